/*
Command xterex runs a kernel for the TeREx language.

	xterex console            interactive terminal session
	xterex serve --codec json serve the kernel over stdin/stdout
	xterex mcp                serve the kernel as MCP tools over stdin/stdout
	xterex kernelspec DIR     write a kernel spec for stdio-framed frontends
	xterex version            print version information

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"fmt"
	"os"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/xterex/config"
	"github.com/npillmayer/xterex/kernel"
	"github.com/spf13/cobra"
)

// tracer traces with key 'xterex.host'.
func tracer() tracing.Trace {
	return tracing.Select("xterex.host")
}

var rootCmd = &cobra.Command{
	Use:   "xterex",
	Short: "A kernel for the TeREx language",
	Long: `xterex compiles and runs TeREx programs in a persistent session,
driven by a terminal, a message stream or an MCP client.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var settings *config.Config

func main() {
	rootCmd.Version = kernel.Version
	rootCmd.PersistentFlags().String("config", "", "configuration file (TOML)")
	rootCmd.PersistentFlags().String("trace", "", "trace level [Debug|Info|Error]")
	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(kernelspecCmd)
	rootCmd.AddCommand(versionCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration and sets up tracing. Flags override values
// of the configuration file.
func setup(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.ExpandPath(path))
	if err != nil {
		return err
	}
	if level, _ := cmd.Flags().GetString("trace"); level != "" {
		cfg.Trace.Level = level
	}
	tlevel, err := cfg.TraceLevel()
	if err != nil {
		return err
	}
	settings = cfg
	initTracing(tlevel)
	return nil
}

// initTracing routes all tracers to the Go logger, writing to stderr.
func initTracing(level tracing.TraceLevel) {
	gtrace.SyntaxTracer = gologadapter.New()
	gtrace.SyntaxTracer.SetTraceLevel(level)
	tracing.SetTraceSelector(tracing.SelectorForAdapter(func() tracing.Trace {
		return gtrace.SyntaxTracer
	}))
	tracer().Infof("Trace level is %s", level)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		info := kernel.KernelInfo()
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (protocol %s, %s %s)\n", info.Implementation,
			info.ImplementationVersion, info.ProtocolVersion, info.LanguageInfo.Name,
			info.LanguageInfo.Version)
	},
}
