package cli

import (
	"fmt"
	"io"
	"strings"
)

// GenerateCompletion generates a shell completion script for the specified shell.
//
// Parameters:
//   - out: The writer to output the completion script.
//   - shell: The shell type ("bash", "zsh", "fish", "powershell").
//   - runners: List of available runner names.
//   - problemNames: List of available problem names.
//
// Returns:
//   - error: An error if the shell is not supported.
func GenerateCompletion(out io.Writer, shell string, runners, problemNames []string) error {
	switch shell {
	case "bash":
		return writeScript(out, bashScript, strings.Join(runners, " "), strings.Join(problemNames, " "))
	case "zsh":
		return writeScript(out, zshScript, strings.Join(runners, " "), strings.Join(problemNames, " "))
	case "fish":
		return writeScript(out, fishScript, strings.Join(runners, " "), strings.Join(problemNames, " "))
	case "powershell", "ps":
		return writeScript(out, powerShellScript, quoteList(runners), quoteList(problemNames))
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish, powershell)", shell)
	}
}

func writeScript(out io.Writer, script, runners, problemNames string) error {
	_, err := fmt.Fprintf(out, script, runners, problemNames)
	return err
}

// quoteList renders names as a PowerShell array body: 'a', 'b'.
func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = "'" + name + "'"
	}
	return strings.Join(quoted, ", ")
}

const bashScript = `# Bash completion script for aitken
# Add this to your ~/.bashrc or ~/.bash_completion

_aitken_completions() {
    local cur prev opts algorithms problems
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    opts="--help -h --version -V --problem -p --algo --abs --rel --budget --policy --digits -v -d --details --sweep --sweep-max --sweep-base --timeout --json --server --port --no-color --output -o --quiet -q --interactive --completion --list"

    algorithms="%[1]s all"
    problems="%[2]s"

    case "${prev}" in
        --algo)
            COMPREPLY=( $(compgen -W "${algorithms}" -- "${cur}") )
            return 0
            ;;
        --problem|-p)
            COMPREPLY=( $(compgen -W "${problems}" -- "${cur}") )
            return 0
            ;;
        --policy)
            COMPREPLY=( $(compgen -W "propagate stop fail" -- "${cur}") )
            return 0
            ;;
        --completion)
            COMPREPLY=( $(compgen -W "bash zsh fish powershell" -- "${cur}") )
            return 0
            ;;
        --output|-o)
            COMPREPLY=( $(compgen -f -- "${cur}") )
            return 0
            ;;
        --port)
            COMPREPLY=( $(compgen -W "8080 3000 5000 9000" -- "${cur}") )
            return 0
            ;;
        --timeout)
            COMPREPLY=( $(compgen -W "10s 1m 5m 10m" -- "${cur}") )
            return 0
            ;;
        --abs|--rel)
            COMPREPLY=( $(compgen -W "0 1e-6 1e-8 1e-10 1e-12" -- "${cur}") )
            return 0
            ;;
        --budget)
            COMPREPLY=( $(compgen -W "1000 1000000 1000000000" -- "${cur}") )
            return 0
            ;;
    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi
}

complete -F _aitken_completions aitken
`

const zshScript = `#compdef aitken

# Zsh completion script for aitken
# Add this to your ~/.zshrc or place in $fpath

_aitken() {
    local -a algorithms problems
    algorithms=(%[1]s all)
    problems=(%[2]s)

    _arguments -s \
        '(-h --help)'{-h,--help}'[Show help message]' \
        '(-V --version)'{-V,--version}'[Show version information]' \
        '(-p --problem)'{-p,--problem}'[Problem to evaluate]:problem:($problems)' \
        '--algo[Runner to use]:runner:($algorithms)' \
        '--abs[Absolute tolerance]:tolerance:(0 1e-6 1e-8 1e-10 1e-12)' \
        '--rel[Relative tolerance]:tolerance:(0 1e-6 1e-8 1e-10 1e-12)' \
        '--budget[Maximum number of terms]:terms:(1000 1000000 1000000000)' \
        '--policy[Degenerate step policy]:policy:(propagate stop fail)' \
        '--digits[Decimals displayed]:digits:' \
        '-v[Display full precision]' \
        '(-d --details)'{-d,--details}'[Show error analysis]' \
        '--sweep[Run a budget sweep]' \
        '--sweep-max[Largest sweep exponent]:exponent:(3 4 5 6 7 8 9)' \
        '--sweep-base[Sweep budget base]:base:(2 10)' \
        '--timeout[Maximum execution time]:duration:(10s 1m 5m 10m)' \
        '--json[Output in JSON format]' \
        '--server[Start HTTP server mode]' \
        '--port[Server port]:port:(8080 3000 5000 9000)' \
        '--no-color[Disable colored output]' \
        '(-o --output)'{-o,--output}'[Output file path]:file:_files' \
        '(-q --quiet)'{-q,--quiet}'[Quiet mode for scripts]' \
        '--interactive[Start interactive REPL mode]' \
        '--completion[Generate completion script]:shell:(bash zsh fish powershell)' \
        '--list[List available problems]'
}

_aitken "$@"
`

const fishScript = `# Fish completion script for aitken
# Add this to ~/.config/fish/completions/aitken.fish

complete -c aitken -f

complete -c aitken -s h -l help -d 'Show help message'
complete -c aitken -s V -l version -d 'Show version information'

complete -c aitken -s p -l problem -d 'Problem to evaluate' -xa '%[2]s'
complete -c aitken -l algo -d 'Runner to use' -xa '%[1]s all'
complete -c aitken -l abs -d 'Absolute tolerance' -xa '0 1e-6 1e-8 1e-10 1e-12'
complete -c aitken -l rel -d 'Relative tolerance' -xa '0 1e-6 1e-8 1e-10 1e-12'
complete -c aitken -l budget -d 'Maximum number of terms' -xa '1000 1000000 1000000000'
complete -c aitken -l policy -d 'Degenerate step policy' -xa 'propagate stop fail'
complete -c aitken -l digits -d 'Decimals displayed' -x
complete -c aitken -s v -d 'Display full precision'
complete -c aitken -s d -l details -d 'Show error analysis'
complete -c aitken -l timeout -d 'Maximum execution time' -xa '10s 1m 5m 10m'

complete -c aitken -l sweep -d 'Run a budget sweep'
complete -c aitken -l sweep-max -d 'Largest sweep exponent' -xa '3 4 5 6 7 8 9'
complete -c aitken -l sweep-base -d 'Sweep budget base' -xa '2 10'

complete -c aitken -l json -d 'Output in JSON format'
complete -c aitken -s o -l output -d 'Output file path' -rF
complete -c aitken -s q -l quiet -d 'Quiet mode for scripts'
complete -c aitken -l no-color -d 'Disable colored output'

complete -c aitken -l server -d 'Start HTTP server mode'
complete -c aitken -l port -d 'Server port' -xa '8080 3000 5000 9000'

complete -c aitken -l interactive -d 'Start interactive REPL mode'
complete -c aitken -l completion -d 'Generate completion script' -xa 'bash zsh fish powershell'
complete -c aitken -l list -d 'List available problems'
`

const powerShellScript = `# PowerShell completion script for aitken
# Add this to your $PROFILE

$aitkenRunners = @(%[1]s, 'all')
$aitkenProblems = @(%[2]s)

Register-ArgumentCompleter -CommandName 'aitken' -Native -ScriptBlock {
    param($wordToComplete, $commandAst, $cursorPosition)

    $options = @(
        @{Name = '-h'; Description = 'Show help message' }
        @{Name = '--help'; Description = 'Show help message' }
        @{Name = '-V'; Description = 'Show version information' }
        @{Name = '--version'; Description = 'Show version information' }
        @{Name = '-p'; Description = 'Problem to evaluate' }
        @{Name = '--problem'; Description = 'Problem to evaluate' }
        @{Name = '--algo'; Description = 'Runner to use' }
        @{Name = '--abs'; Description = 'Absolute tolerance' }
        @{Name = '--rel'; Description = 'Relative tolerance' }
        @{Name = '--budget'; Description = 'Maximum number of terms' }
        @{Name = '--policy'; Description = 'Degenerate step policy' }
        @{Name = '--digits'; Description = 'Decimals displayed' }
        @{Name = '-v'; Description = 'Display full precision' }
        @{Name = '-d'; Description = 'Show error analysis' }
        @{Name = '--details'; Description = 'Show error analysis' }
        @{Name = '--sweep'; Description = 'Run a budget sweep' }
        @{Name = '--sweep-max'; Description = 'Largest sweep exponent' }
        @{Name = '--sweep-base'; Description = 'Sweep budget base' }
        @{Name = '--timeout'; Description = 'Maximum execution time' }
        @{Name = '--json'; Description = 'Output in JSON format' }
        @{Name = '--server'; Description = 'Start HTTP server mode' }
        @{Name = '--port'; Description = 'Server port' }
        @{Name = '--no-color'; Description = 'Disable colored output' }
        @{Name = '-o'; Description = 'Output file path' }
        @{Name = '--output'; Description = 'Output file path' }
        @{Name = '-q'; Description = 'Quiet mode for scripts' }
        @{Name = '--quiet'; Description = 'Quiet mode for scripts' }
        @{Name = '--interactive'; Description = 'Start interactive REPL mode' }
        @{Name = '--completion'; Description = 'Generate completion script' }
        @{Name = '--list'; Description = 'List available problems' }
    )

    $elements = $commandAst.CommandElements
    $prevElement = if ($elements.Count -gt 2) { $elements[-2].ToString() } else { '' }

    $values = switch ($prevElement) {
        '--algo' { $aitkenRunners }
        '--problem' { $aitkenProblems }
        '-p' { $aitkenProblems }
        '--policy' { @('propagate', 'stop', 'fail') }
        '--completion' { @('bash', 'zsh', 'fish', 'powershell') }
        '--timeout' { @('10s', '1m', '5m', '10m') }
        '--port' { @('8080', '3000', '5000', '9000') }
        default { $null }
    }
    if ($values) {
        $values | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
        }
        return
    }

    $options | Where-Object { $_.Name -like "$wordToComplete*" } | ForEach-Object {
        [System.Management.Automation.CompletionResult]::new($_.Name, $_.Name, 'ParameterName', $_.Description)
    }
}
`
