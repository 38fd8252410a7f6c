package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	prompt "github.com/c-bata/go-prompt"

	"github.com/xtxerr/wavehist/internal/errors"
	"github.com/xtxerr/wavehist/internal/logging"
	"github.com/xtxerr/wavehist/internal/storage"
	"github.com/xtxerr/wavehist/internal/storage/types"
)

// shell executes text commands against a storage service.
type shell struct {
	svc  *storage.Service
	out  io.Writer
	log  *slog.Logger
	done bool
}

func newShell(svc *storage.Service, out io.Writer) *shell {
	return &shell{
		svc: svc,
		out: out,
		log: logging.Component("cli"),
	}
}

type command struct {
	name  string
	usage string
	run   func(s *shell, args []string, rest string) error
}

var commands []command

func init() {
	commands = []command{
		{"push", "push t0,dt,y1 y2 ...[;t0,dt,y1 ...] - one segment per channel", (*shell).push},
		{"query", "query start end [step] [ch] - flattened samples near a window", (*shell).query},
		{"series", "series [ch] - every stored sample with gaps", (*shell).series},
		{"range", "range [ch] - bounding box of a channel", (*shell).bounds},
		{"rangey", "rangey [start|-] [end|-] [ch] - bounding box within a window", (*shell).rangeY},
		{"rangex", "rangex [ch] - time extent and finest interval", (*shell).rangeX},
		{"summary", "summary [ch] - count, sum, min, max, avg and percentiles", (*shell).summary},
		{"export", "export [path] - write all channels to parquet", (*shell).export},
		{"stats", "stats [pattern] - analytics over exported parquet files", (*shell).stats},
		{"snapshot", "snapshot - print the buffer as JSON", (*shell).snapshot},
		{"save", "save path - write a framed snapshot", (*shell).save},
		{"load", "load path - replace the buffer with a framed snapshot", (*shell).load},
		{"info", "info - buffer statistics", (*shell).info},
		{"help", "help - list commands", (*shell).help},
		{"exit", "exit - leave the shell", (*shell).exit},
	}
}

func lookup(name string) (command, bool) {
	if name == "quit" {
		name = "exit"
	}
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// execute runs one command line.
func (s *shell) execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	name, rest, _ := strings.Cut(line, " ")
	cmd, ok := lookup(name)
	if !ok {
		return fmt.Errorf("unknown command %q: %w", name, errors.ErrInvalidCommand)
	}

	rest = strings.TrimSpace(rest)
	return cmd.run(s, strings.Fields(rest), rest)
}

// executor adapts execute to the prompt callback.
func (s *shell) executor(line string) {
	if err := s.execute(line); err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
	}
}

func (s *shell) completer(d prompt.Document) []prompt.Suggest {
	if strings.Contains(d.TextBeforeCursor(), " ") {
		return nil
	}
	suggests := make([]prompt.Suggest, len(commands))
	for i, c := range commands {
		suggests[i] = prompt.Suggest{Text: c.name, Description: c.usage}
	}
	return prompt.FilterHasPrefix(suggests, d.GetWordBeforeCursor(), true)
}

// runScript executes every line of r and returns the number of failed
// commands.
func (s *shell) runScript(r io.Reader) int {
	failed := 0
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	for n := 1; scanner.Scan() && !s.done; n++ {
		if err := s.execute(scanner.Text()); err != nil {
			failed++
			fmt.Fprintf(s.out, "error: line %d: %v\n", n, err)
		}
	}
	if err := scanner.Err(); err != nil {
		s.log.Error("read script", "error", err)
		failed++
	}
	return failed
}

func (s *shell) print(v any) error {
	enc := json.NewEncoder(s.out)
	return enc.Encode(v)
}

// =============================================================================
// Argument parsing
// =============================================================================

func parseFloat(name, v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number: %w", name, v, errors.ErrInvalidCommand)
	}
	return f, nil
}

func parseTimestamp(name, v string) (*types.Timestamp, error) {
	if v == "-" {
		return nil, nil
	}
	f, err := parseFloat(name, v)
	if err != nil {
		return nil, err
	}
	ts := types.Timestamp(f)
	return &ts, nil
}

// channelArg returns args[i] as a channel index, or 0 when absent.
func channelArg(args []string, i int) (int, error) {
	if len(args) <= i {
		return 0, nil
	}
	ch, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("channel: %q is not an integer: %w", args[i], errors.ErrInvalidCommand)
	}
	return ch, nil
}

// parseSegment parses "t0,dt,y1 y2 ...". Values may be separated by
// spaces or commas.
func parseSegment(text string) (types.Waveform, error) {
	parts := strings.SplitN(strings.TrimSpace(text), ",", 3)
	if len(parts) < 2 {
		return types.Waveform{}, fmt.Errorf("segment %q: want t0,dt,values: %w", text, errors.ErrInvalidCommand)
	}

	t0, err := parseFloat("t0", strings.TrimSpace(parts[0]))
	if err != nil {
		return types.Waveform{}, err
	}
	dt, err := parseFloat("dt", strings.TrimSpace(parts[1]))
	if err != nil {
		return types.Waveform{}, err
	}

	var y []float64
	if len(parts) == 3 {
		fields := strings.FieldsFunc(parts[2], func(r rune) bool { return r == ' ' || r == ',' || r == '\t' })
		y = make([]float64, len(fields))
		for i, f := range fields {
			if y[i], err = parseFloat("value", f); err != nil {
				return types.Waveform{}, err
			}
		}
	}

	return types.NewWaveform(types.Timestamp(t0), dt, y), nil
}

// =============================================================================
// Commands
// =============================================================================

func (s *shell) push(_ []string, rest string) error {
	if rest == "" {
		return errors.NewMissingField("segments")
	}

	channels := strings.Split(rest, ";")
	item := make([]types.Waveform, len(channels))
	for i, text := range channels {
		w, err := parseSegment(text)
		if err != nil {
			return err
		}
		item[i] = w
	}

	if err := s.svc.Push(item...); err != nil {
		return err
	}
	s.log.Debug("pushed", "channels", len(item))
	return nil
}

func (s *shell) query(args []string, _ string) error {
	if len(args) < 2 {
		return errors.NewMissingField("start/end")
	}
	start, err := parseFloat("start", args[0])
	if err != nil {
		return err
	}
	end, err := parseFloat("end", args[1])
	if err != nil {
		return err
	}
	var step float64
	if len(args) > 2 {
		if step, err = parseFloat("step", args[2]); err != nil {
			return err
		}
	}
	ch, err := channelArg(args, 3)
	if err != nil {
		return err
	}

	values, err := s.svc.Query(types.Timestamp(start), types.Timestamp(end), step, ch)
	if err != nil {
		return err
	}
	return s.print(values)
}

func (s *shell) series(args []string, _ string) error {
	ch, err := channelArg(args, 0)
	if err != nil {
		return err
	}
	points, err := s.svc.DataSeries(ch)
	if err != nil {
		return err
	}
	return s.print(points)
}

// printBounds prints the result, or {} when there is none.
func (s *shell) printBounds(v any, ok bool) error {
	if !ok {
		return s.print(struct{}{})
	}
	return s.print(v)
}

func (s *shell) bounds(args []string, _ string) error {
	ch, err := channelArg(args, 0)
	if err != nil {
		return err
	}
	b, ok, err := s.svc.Range(ch)
	if err != nil {
		return err
	}
	return s.printBounds(b, ok)
}

func (s *shell) rangeY(args []string, _ string) error {
	var start, end *types.Timestamp
	var err error
	if len(args) > 0 {
		if start, err = parseTimestamp("start", args[0]); err != nil {
			return err
		}
	}
	if len(args) > 1 {
		if end, err = parseTimestamp("end", args[1]); err != nil {
			return err
		}
	}
	ch, err := channelArg(args, 2)
	if err != nil {
		return err
	}

	b, ok, err := s.svc.RangeY(start, end, ch)
	if err != nil {
		return err
	}
	return s.printBounds(b, ok)
}

func (s *shell) rangeX(args []string, _ string) error {
	ch, err := channelArg(args, 0)
	if err != nil {
		return err
	}
	r, ok, err := s.svc.RangeX(ch)
	if err != nil {
		return err
	}
	return s.printBounds(r, ok)
}

func (s *shell) summary(args []string, _ string) error {
	results, err := s.svc.Summarize(context.Background(), nil, nil)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return s.print(results)
	}

	ch, err := channelArg(args, 0)
	if err != nil {
		return err
	}
	if ch < 0 || ch >= len(results) {
		return errors.NewChannelOutOfRange(ch, len(results))
	}
	return s.print(results[ch])
}

func (s *shell) export(args []string, _ string) error {
	var path string
	if len(args) > 0 {
		path = args[0]
	}
	res, err := s.svc.Export(context.Background(), path)
	if err != nil {
		return err
	}
	return s.print(res)
}

func (s *shell) stats(args []string, _ string) error {
	var pattern string
	if len(args) > 0 {
		pattern = args[0]
	}
	stats, err := s.svc.ExportStats(context.Background(), pattern)
	if err != nil {
		return err
	}
	return s.print(stats)
}

func (s *shell) snapshot(_ []string, _ string) error {
	return s.print(s.svc.Snapshot())
}

func (s *shell) save(args []string, _ string) error {
	if len(args) == 0 {
		return errors.NewMissingField("path")
	}
	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	if err := s.svc.WriteSnapshot(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *shell) load(args []string, _ string) error {
	if len(args) == 0 {
		return errors.NewMissingField("path")
	}
	f, err := os.Open(args[0])
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFound("snapshot", args[0])
		}
		return fmt.Errorf("open snapshot file: %w", err)
	}
	defer f.Close()
	return s.svc.RestoreSnapshot(f)
}

func (s *shell) info(_ []string, _ string) error {
	return s.print(s.svc.Stats())
}

func (s *shell) help(_ []string, _ string) error {
	for _, c := range commands {
		fmt.Fprintf(s.out, "  %s\n", c.usage)
	}
	return nil
}

func (s *shell) exit(_ []string, _ string) error {
	s.done = true
	return nil
}
