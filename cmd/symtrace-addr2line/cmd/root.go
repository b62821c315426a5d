// Package cmd implements symtrace-addr2line's command line, following
// the teacher's cmd/root.go idiom (a single cobra.Command configured
// through init/initConfig, with viper binding flags to an optional
// config file and environment variables).
package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jetsetilly/symtrace"
	"github.com/jetsetilly/symtrace/internal/demangle"
)

var cfgFile string

// RootCmd resolves every address given on the command line against the
// module named by --exe, printing one symbolic frame (or chain of
// frames, for an inlined call site) per address.
var RootCmd = &cobra.Command{
	Use:   "symtrace-addr2line [flags] address...",
	Short: "Resolve addresses to symbolic source locations",
	Long: `symtrace-addr2line resolves addresses against a binary's symbol table
and DWARF debug information, printing the function, file and line for
each address given on the command line — an addr2line-equivalent front
end for the symtrace library.`,
	Args: cobra.MinimumNArgs(1),
	RunE: run,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.symtrace-addr2line.yaml)")

	RootCmd.Flags().String("exe", "", "path to the binary to resolve addresses against")
	RootCmd.Flags().Uint64("base", 0, "runtime load base address (0 for a non-PIE executable)")
	RootCmd.Flags().StringSlice("debug-dir", nil, "additional directory to search for companion debug files")
	RootCmd.Flags().Bool("demangle", false, "demangle Itanium C++ symbol names")
	RootCmd.Flags().Bool("functions", true, "print the resolved function name alongside file:line")
	_ = RootCmd.MarkFlagRequired("exe")

	_ = viper.BindPFlag("exe", RootCmd.Flags().Lookup("exe"))
	_ = viper.BindPFlag("base", RootCmd.Flags().Lookup("base"))
	_ = viper.BindPFlag("debug-dir", RootCmd.Flags().Lookup("debug-dir"))
	_ = viper.BindPFlag("demangle", RootCmd.Flags().Lookup("demangle"))
	_ = viper.BindPFlag("functions", RootCmd.Flags().Lookup("functions"))

	cobra.OnInitialize(initConfig)
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called by main.main(); it only needs to run once.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initConfig reads a config file and environment variables if set,
// following the teacher's cmd/root.go initConfig.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".symtrace-addr2line")
	}

	viper.SetEnvPrefix("SYMTRACE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func run(cmd *cobra.Command, args []string) error {
	exe := viper.GetString("exe")
	if exe == "" {
		return fmt.Errorf("--exe is required")
	}
	base := viper.GetUint64("base")
	debugDirs := viper.GetStringSlice("debug-dir")
	wantDemangle := viper.GetBool("demangle")
	printFunctions, _ := cmd.Flags().GetBool("functions")

	opts := []symtrace.Option{symtrace.WithDebugDirs(debugDirs)}
	if wantDemangle {
		opts = append(opts, symtrace.WithDemangler(demangle.Default{}))
	}

	state, err := symtrace.CreateState(exe, base, opts...)
	if err != nil {
		return fmt.Errorf("loading %s: %w", exe, err)
	}

	for _, arg := range args {
		pc, err := parseAddress(arg)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", arg, err)
			continue
		}
		printFrame(cmd, state, pc, printFunctions)
	}
	return nil
}

func parseAddress(s string) (uint64, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	return strconv.ParseUint(s, 16, 64)
}

func printFrame(cmd *cobra.Command, state *symtrace.State, pc uint64, printFunctions bool) {
	w := cmd.OutOrStdout()
	any := state.PCFull(pc, func(f symtrace.Frame) bool {
		if printFunctions {
			fmt.Fprintln(w, f.Function)
		}
		if f.File != "" {
			fmt.Fprintf(w, "%s:%d\n", f.File, f.Line)
		} else {
			fmt.Fprintln(w, "??:0")
		}
		return false
	})
	if !any {
		if printFunctions {
			fmt.Fprintln(w, "??")
		}
		fmt.Fprintln(w, "??:0")
	}
}
