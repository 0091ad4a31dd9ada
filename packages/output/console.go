package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/fatih/color"

	"github.com/abdul-hamid-achik/restcall/packages/rest"
)

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

// FormatReply renders the outcome of one call: the status line colored by
// its class, headers when verbose, and the body. An empty reply prints a
// marker instead of a status line.
func (f *ConsoleFormatter) FormatReply(method, url string, reply rest.Reply, duration time.Duration) {
	cyan := color.New(color.FgCyan).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "%s %s %s\n", bold(method), url, cyan(fmt.Sprintf("(%dms)", duration.Milliseconds())))

	if reply.Empty {
		fmt.Fprintf(f.writer, "%s\n", yellow("(empty reply)"))
		return
	}

	resp := reply.Response
	fmt.Fprintf(f.writer, "%s\n", f.statusColor(resp)(fmt.Sprintf("HTTP %d", resp.StatusCode)))

	if f.verbose {
		names := make([]string, 0, len(resp.Headers))
		for k := range resp.Headers {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			fmt.Fprintf(f.writer, "%s: %s\n", cyan(k), resp.Headers[k])
		}
	}

	if resp.Body != "" {
		fmt.Fprintf(f.writer, "%s\n", resp.Body)
	}
}

func (f *ConsoleFormatter) statusColor(resp *rest.Response) func(...any) string {
	switch {
	case resp.IsSuccess():
		return color.New(color.FgGreen).SprintFunc()
	case resp.IsClientError() || resp.IsServerError():
		return color.New(color.FgRed).SprintFunc()
	default:
		return color.New(color.FgYellow).SprintFunc()
	}
}

// FormatExtracted renders a value extracted from a response body.
func (f *ConsoleFormatter) FormatExtracted(path string, value any) {
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(f.writer, "%s = %v\n", cyan(path), value)
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}
