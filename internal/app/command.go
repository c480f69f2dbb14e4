package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/victorvcruz/netclip/internal/logger"
	"github.com/victorvcruz/netclip/internal/network/ip"
	syncTypes "github.com/victorvcruz/netclip/internal/sync"
)

// usageError marks a command line the user got wrong. Those print usage and
// exit 0, like asking for help.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// Execute parses args, runs the node and returns the process exit code.
func (a *App) Execute(ctx context.Context, args []string) int {
	cmd := a.newRootCommand()
	cmd.SetArgs(lowercaseShorthands(args))

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var uerr *usageError
	if errors.As(err, &uerr) {
		a.printError(uerr)
		a.printUsage(cmd)
		return 0
	}

	a.printError(err)
	return 1
}

func (a *App) newRootCommand() *cobra.Command {
	v := NewViper()

	var (
		configPath string
		showIP     bool
	)

	cmd := &cobra.Command{
		Use:           "netclip",
		Short:         "Share the clipboard between machines on the same LAN",
		Long:          "netclip keeps the text clipboard of every node on the local network in sync over UDP.",
		Version:       a.version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return &usageError{fmt.Errorf("unexpected argument %q", args[0])}
			}
			return nil
		},
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("port") {
				return nil
			}
			port, _ := cmd.Flags().GetInt("port")
			if port < 1 || port > 65535 {
				return &usageError{fmt.Errorf("invalid port %d", port)}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showIP {
				ip.ShowAccessibleIP(cmd.OutOrStdout())
				return nil
			}
			return a.runWithViper(cmd.Context(), v, configPath)
		},
	}

	cmd.SetIn(a.in)
	cmd.SetOut(a.out)
	cmd.SetErr(a.errOut)
	cmd.SetVersionTemplate("netclip {{.Version}}\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err}
	})
	cmd.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		a.printUsage(cmd)
	})

	flags := cmd.Flags()
	flags.SetNormalizeFunc(lowercaseFlagNames)
	flags.IntP("port", "p", syncTypes.DefaultPort, "UDP port used for clipboard and discovery traffic")
	flags.StringVarP(&configPath, "config", "c", "", "config file (default is "+ConfigFile()+")")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.BoolVar(&showIP, "show-ip", false, "print the address other nodes reach this one at and exit")

	_ = v.BindPFlag("port", flags.Lookup("port"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))

	return cmd
}

func (a *App) runWithViper(ctx context.Context, v *viper.Viper, configPath string) error {
	if err := ReadConfigFile(v, configPath); err != nil {
		return err
	}

	cfg, err := Load(v)
	if err != nil {
		return err
	}

	logger.SetOutput(a.out, cfg.LogFormat)
	logger.SetLevel(cfg.LogLevel)
	if used := v.ConfigFileUsed(); used != "" {
		logger.Info().Str("file", used).Msg("Loaded config file")
	}
	WatchLogLevel(v)

	return a.Run(ctx, cfg)
}

func (a *App) printUsage(cmd *cobra.Command) {
	header := color.New(color.FgCyan, color.Bold)
	header.Fprintf(a.errOut, "netclip %s\n", a.version) //nolint:errcheck
	fmt.Fprintln(a.errOut, cmd.Short)
	fmt.Fprintln(a.errOut)
	fmt.Fprint(a.errOut, cmd.UsageString())
}

func (a *App) printError(err error) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprint(a.errOut, "Error: ") //nolint:errcheck
	fmt.Fprintln(a.errOut, err)
}

func lowercaseFlagNames(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ToLower(name))
}

// lowercaseShorthands rewrites "-P 9996" as "-p 9996". The normalize func
// only sees long names. Only the flag letter changes, so an attached value
// like "-c/Path/To.yaml" keeps its case. Nothing after "--" is touched.
func lowercaseShorthands(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i, arg := range out {
		if arg == "--" {
			break
		}
		if len(arg) < 2 || arg[0] != '-' || arg[1] < 'A' || arg[1] > 'Z' {
			continue
		}
		out[i] = "-" + string(arg[1]+('a'-'A')) + arg[2:]
	}
	return out
}
