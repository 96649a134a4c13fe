package config

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/agbru/aitken/internal/ui"
)

// shorthands lists the one-letter aliases hidden from the usage screen.
var shorthands = map[string]bool{"p": true, "o": true, "q": true}

// setCustomUsage configures the flag set with a colored usage function.
func setCustomUsage(fs *flag.FlagSet) {
	fs.Usage = func() {
		// Usage can print before the theme is initialized.
		t := ui.Current()
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			t = ui.NoColorTheme
		}

		out := fs.Output()

		// Header
		fmt.Fprintf(out, "\n%sAitken Accelerator%s\n", t.Bold, t.Reset)
		fmt.Fprintf(out, "Limits of slowly converging sequences and series by Aitken's delta-squared process.\n\n")
		fmt.Fprintf(out, "%sUsage:%s\n  %s [flags]\n\n%sFlags:%s\n", t.Bold, t.Reset, fs.Name(), t.Bold, t.Reset)

		fs.VisitAll(func(f *flag.Flag) {
			// Shorthand aliases are documented by their long form.
			if shorthands[f.Name] {
				return
			}
			name, usage := flag.UnquoteUsage(f)
			flagSig := fmt.Sprintf("-%s", f.Name)
			if len(name) > 0 {
				flagSig += " " + name
			}

			// Print formatted flag
			fmt.Fprintf(out, "  %s%-25s%s %s", t.Heading, flagSig, t.Reset, usage)

			// Print default value if meaningful
			if f.DefValue != "" && f.DefValue != "0" && f.DefValue != "false" {
				fmt.Fprintf(out, " %s(default %s)%s", t.Muted, f.DefValue, t.Reset)
			}
			fmt.Fprintln(out)
		})
		fmt.Fprintf(out, "\n%sEnvironment:%s\n", t.Bold, t.Reset)
		fmt.Fprintf(out, "  %sFLAG_NAME overrides any flag not given on the command line (e.g. %sBUDGET, %sPOLICY).\n", EnvPrefix, EnvPrefix, EnvPrefix)
		fmt.Fprintf(out, "  %s selects the color theme (%s); NO_COLOR disables colors.\n", ui.ThemeEnv, strings.Join(ui.Names(), ", "))
		fmt.Fprintf(out, "\n%sExamples:%s\n", t.Bold, t.Reset)
		fmt.Fprintf(out, "  %s -problem leibniz -abs 1e-8 -rel 1e-6\n", fs.Name())
		fmt.Fprintf(out, "  %s -problem basel -sweep -sweep-max 5\n", fs.Name())
		fmt.Fprintf(out, "  %s -problem heron -algo aitken -policy stop -budget 20\n\n", fs.Name())
	}
}
