package cli

import (
	apperrors "github.com/agbru/aitken/internal/errors"
	"github.com/agbru/aitken/internal/ui"
)

var _ apperrors.ColorProvider = CLIColorProvider{}

// CLIColorProvider highlights status lines with the active terminal theme:
// durations and other variable parts use the theme's stalled colour.
type CLIColorProvider struct{}

func (CLIColorProvider) Warn() string  { return ui.Current().Stalled }
func (CLIColorProvider) Reset() string { return ui.Current().Reset }
