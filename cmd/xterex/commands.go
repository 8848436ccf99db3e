package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/npillmayer/xterex/host/console"
	"github.com/npillmayer/xterex/host/mcphost"
	"github.com/npillmayer/xterex/host/wire"
	"github.com/npillmayer/xterex/kernel"
	"github.com/spf13/cobra"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start an interactive session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := settings.Console
		if file, _ := cmd.Flags().GetString("init"); file != "" {
			cfg.InitFile = file
		}
		return console.New(cfg, os.Stderr).Run()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the kernel over stdin and stdout",
	RunE: func(cmd *cobra.Command, _ []string) error {
		name := settings.Wire.Codec
		if cmd.Flags().Changed("codec") {
			name, _ = cmd.Flags().GetString("codec")
		}
		codec, err := wire.CodecFor(name)
		if err != nil {
			return err
		}
		tracer().Infof("serving kernel with %s codec", codec.Name())
		return wire.NewServer(codec).Serve(cmd.Context(), os.Stdin, os.Stdout)
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the kernel as MCP tools over stdin and stdout",
	RunE: func(cmd *cobra.Command, _ []string) error {
		host, err := mcphost.New(settings.MCP.Name, kernel.Version)
		if err != nil {
			return err
		}
		return host.Run(cmd.Context())
	},
}

// KernelSpec is the kernel.json a frontend uses to launch the kernel over a
// framed stdio stream.
type KernelSpec struct {
	Argv        []string `json:"argv"`
	DisplayName string   `json:"display_name"`
	Language    string   `json:"language"`
}

var kernelspecCmd = &cobra.Command{
	Use:   "kernelspec DIR",
	Short: "Write kernel.json for stdio-framed frontends into directory DIR",
	Long: `kernelspec writes a kernel.json launching "xterex serve". The kernel talks
JSON lines or MessagePack over stdin and stdout; it does not implement the
ZeroMQ transport, so frontends expecting a connection file cannot use it.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exe, err := os.Executable()
		if err != nil {
			exe = "xterex"
		}
		spec := KernelSpec{
			Argv:        []string{exe, "serve", "--codec", settings.Wire.Codec},
			DisplayName: "TeREx",
			Language:    kernel.KernelInfo().LanguageInfo.Name,
		}
		data, err := json.MarshalIndent(spec, "", "  ")
		if err != nil {
			return err
		}
		if err := os.MkdirAll(args[0], 0o755); err != nil {
			return fmt.Errorf("cannot create kernel spec directory: %w", err)
		}
		path := filepath.Join(args[0], "kernel.json")
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("cannot write kernel spec: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "kernel spec written to %s\n", path)
		return nil
	},
}

func init() {
	consoleCmd.Flags().String("init", "", "file to load before going interactive")
	serveCmd.Flags().String("codec", "json", "wire codec [json|msgpack]")
}
