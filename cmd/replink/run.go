package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/groovebox/replink"
	"github.com/groovebox/replink/internal/appconfig"
	"github.com/groovebox/replink/internal/dispatch"
	"github.com/groovebox/replink/internal/registry"
)

// errQuit ends the control loop without reporting a failure.
var errQuit = errors.New("quit")

func newRunCmd(verbose *bool) *cobra.Command {
	var (
		configPath string
		command    string
		args       []string
		boot       string
		literate   bool
		marker     string
		chunkSize  int
		usePTY     bool
	)

	cmd := &cobra.Command{
		Use:   "run [source-file]",
		Short: "Start a session and read control lines from stdin",
		Long: `Start the interpreter and enter an interactive control loop.

Plain lines are sent to the interpreter as run-line. Lines between the
block markers (":{" and ":}" by default) are collected and sent as one
compound region. Lines starting with ":" that name a session operation
(see "replink keys") are handled locally; anything else that starts
with ":" passes through to the interpreter untouched.

The optional source-file is the document scope for run-slot: it is
reread on every invocation, so saving the file in an editor and typing
":run-slot 1" here runs the current block for slot d1.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			cfg, err := appconfig.Load(configPath)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("command") {
				cfg.Command = command
			}

			if flags.Changed("arg") {
				cfg.Args = args
			}

			if flags.Changed("boot") {
				cfg.BootScript = boot
			}

			if flags.Changed("literate") {
				cfg.Literate = literate
			}

			if flags.Changed("marker") {
				cfg.Marker = marker
			}

			if flags.Changed("chunk-size") {
				cfg.ChunkSize = chunkSize
			}

			if flags.Changed("pty") {
				cfg.PTY = usePTY
			}

			docPath := ""
			if len(posArgs) == 1 {
				docPath = posArgs[0]
			}

			opts := []replink.Option{
				replink.WithLogger(newLogger(*verbose)),
				replink.WithCommand(cfg.Command, cfg.Args...),
				replink.WithBootScript(cfg.BootScript),
				replink.WithLiterate(cfg.Literate),
				replink.WithLiterateMarker(cfg.Marker),
				replink.WithChunkSize(cfg.ChunkSize),
				replink.WithBlockMarkers(cfg.Markers.Begin, cfg.Markers.End),
				replink.WithTemplates(replink.Templates{
					Boot:    cfg.Templates.Boot,
					Load:    cfg.Templates.Load,
					Silence: cfg.Templates.Silence,
					Hush:    cfg.Templates.Hush,
					Main:    cfg.Templates.Main,
				}),
				replink.WithSink(replink.WriterSink(cmd.OutOrStdout())),
			}
			if cfg.PTY {
				opts = append(opts, replink.WithPTY())
			}

			d := replink.New(opts...)

			ctx := cmd.Context()
			if err := d.Start(ctx); err != nil {
				return err
			}

			defer func() {
				if d.Running() {
					_ = d.Stop()
				}
			}()

			return controlLoop(ctx, d, cmd.InOrStdin(), cmd.ErrOrStderr(), cfg, docPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file path")
	cmd.Flags().StringVar(&command, "command", "", "interpreter executable")
	cmd.Flags().StringArrayVar(&args, "arg", nil, "interpreter argument (repeatable)")
	cmd.Flags().StringVar(&boot, "boot", "", "boot script path")
	cmd.Flags().BoolVar(&literate, "literate", false, "strip the literate line marker before sending")
	cmd.Flags().StringVar(&marker, "marker", "", "literate line marker")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "per-write byte limit")
	cmd.Flags().BoolVar(&usePTY, "pty", false, "spawn the interpreter under a pseudo-terminal")

	return cmd
}

// controlLoop reads control lines until EOF or :quit. Operation
// failures are reported and the loop continues; a live-coding session
// should survive a typo.
func controlLoop(ctx context.Context, d replink.Dispatcher, in io.Reader, errOut io.Writer, cfg appconfig.Config, docPath string) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		capturing bool
		block     []string
	)

	for scanner.Scan() {
		line := scanner.Text()

		if capturing {
			if strings.TrimSpace(line) == cfg.Markers.End {
				err := d.RunRegion(strings.Join(block, "\n"))
				capturing, block = false, nil

				report(errOut, err)
			} else {
				block = append(block, line)
			}

			continue
		}

		switch {
		case strings.TrimSpace(line) == cfg.Markers.Begin:
			capturing = true
		case strings.HasPrefix(line, ":"):
			if err := control(ctx, d, errOut, line, docPath); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}

				report(errOut, err)
			}
		case strings.TrimSpace(line) == "":
			// Ignore blank lines rather than poke the interpreter.
		default:
			report(errOut, d.RunLine(line))
		}
	}

	return scanner.Err()
}

// control handles one ":"-prefixed line. Unrecognized commands pass
// through to the interpreter: GHCi has its own ":" vocabulary and this
// loop must not eat it.
func control(ctx context.Context, d replink.Dispatcher, errOut io.Writer, line, docPath string) error {
	fields := strings.Fields(strings.TrimPrefix(line, ":"))
	if len(fields) == 0 {
		return d.RunLine(line)
	}

	name, rest := fields[0], fields[1:]

	switch name {
	case "quit", "q":
		return errQuit
	case "help", "h":
		printKeys(errOut)

		return nil
	}

	entry, ok := registry.Lookup(name)
	if !ok {
		return d.RunLine(line)
	}

	if entry.TakesArg && len(rest) == 0 && entry.Op != registry.OpLoadFile {
		return fmt.Errorf("%s needs an argument", name)
	}

	switch entry.Op {
	case registry.OpStart:
		return d.Start(ctx)
	case registry.OpStop:
		return d.Stop()
	case registry.OpInterrupt:
		return d.Interrupt()
	case registry.OpRunLine:
		return d.RunLine(strings.Join(rest, " "))
	case registry.OpRunRegion:
		return fmt.Errorf("use the block markers to enter a region")
	case registry.OpRunSlot:
		doc, err := readDoc(docPath)
		if err != nil {
			return err
		}

		return d.RunSlot(doc, dispatch.NormalizeSlot(rest[0]))
	case registry.OpStopSlot:
		return d.StopSlot(dispatch.NormalizeSlot(rest[0]))
	case registry.OpStopAll:
		return d.StopAll()
	case registry.OpLoadFile:
		path := docPath
		if len(rest) > 0 {
			path = rest[0]
		}

		return d.LoadFile(path)
	case registry.OpRunMain:
		return d.RunMain()
	default:
		return d.RunLine(line)
	}
}

func readDoc(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("run-slot needs a source file: replink run <file>")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read source file: %w", err)
	}

	return string(data), nil
}

func report(w io.Writer, err error) {
	if err != nil {
		fmt.Fprintln(w, "replink:", err)
	}
}
