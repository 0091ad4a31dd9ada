package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/restcall/packages/config"
	"github.com/abdul-hamid-achik/restcall/packages/extract"
	"github.com/abdul-hamid-achik/restcall/packages/history"
	"github.com/abdul-hamid-achik/restcall/packages/output"
	"github.com/abdul-hamid-achik/restcall/packages/rest"
)

// WatchDebounceDelay is how long to wait after a file change before
// re-issuing the call
const WatchDebounceDelay = 200 * time.Millisecond

var (
	callFileFlag      string
	callMethodFlag    string
	callBaseFlag      string
	callHeaderFlags   []string
	callQueryFlags    []string
	callDataFlag      string
	callTimeoutFlag   int
	callTestFlag      bool
	callExtractFlag   string
	callWatchFlag     bool
	callNoHistoryFlag bool
)

var callCmd = &cobra.Command{
	Use:   "call [endpoint]",
	Short: "Issue a single API call",
	Long: `Issue one API call described by flags or by a YAML request file.

The base URL is a bare host (no scheme); the scheme is https, or http in
test mode. The endpoint path is used as given, already encoded.

Examples:
  restcall call /v1/widgets --base api.example.com
  restcall call /v1/widgets -X POST -d '{"name":"gear"}' --base api.example.com
  restcall call -f widget.yaml --extract widget.id
  restcall call -f widget.yaml --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: callCommand,
}

func init() {
	callCmd.Flags().StringVarP(&callFileFlag, "file", "f", "", "YAML request file")
	callCmd.Flags().StringVarP(&callMethodFlag, "method", "X", "", "HTTP method (default GET)")
	callCmd.Flags().StringVarP(&callBaseFlag, "base", "b", "", "Base URL host, no scheme")
	callCmd.Flags().StringArrayVarP(&callHeaderFlags, "header", "H", nil, "Header as 'Key: Value' (repeatable)")
	callCmd.Flags().StringArrayVarP(&callQueryFlags, "query", "q", nil, "Query parameter as key=value (repeatable)")
	callCmd.Flags().StringVarP(&callDataFlag, "data", "d", "", "Request body, or @path to read a file")
	callCmd.Flags().IntVar(&callTimeoutFlag, "timeout", 0, "Per-call timeout in milliseconds")
	callCmd.Flags().BoolVar(&callTestFlag, "test", false, "Use http instead of https")
	callCmd.Flags().StringVar(&callExtractFlag, "extract", "", "Print only this gjson path from the body")
	callCmd.Flags().BoolVar(&callWatchFlag, "watch", false, "Re-issue the call when the request file changes")
	callCmd.Flags().BoolVar(&callNoHistoryFlag, "no-history", false, "Do not record the call in history")
}

func callCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	formatter := newFormatter(cfg)

	client := rest.NewClient(rest.WithTest(callTestFlag || cfg.GetTest()))
	defer client.Close()

	issue := func() error {
		req, err := buildCallRequest(cfg, args)
		if err != nil {
			return err
		}
		return issueCall(cmd, cfg, client, formatter, req)
	}

	if err := issue(); err != nil {
		if !callWatchFlag {
			return err
		}
		formatter.FormatError(err)
	}

	if !callWatchFlag {
		return nil
	}
	if callFileFlag == "" {
		return fmt.Errorf("--watch requires a request file (-f)")
	}
	return watchAndReissue(cmd, formatter, issue)
}

// buildCallRequest assembles the request from the file (if any), the
// config defaults, and the flags, flags winning.
func buildCallRequest(cfg *config.Config, args []string) (*rest.Request, error) {
	rf := &RequestFile{}
	if callFileFlag != "" {
		loaded, err := loadRequestFile(callFileFlag)
		if err != nil {
			return nil, err
		}
		rf = loaded
	}

	req := rf.toRequest(cfg)

	if len(args) > 0 {
		req.Endpoint = args[0]
	}
	if callBaseFlag != "" {
		req.BaseURL = callBaseFlag
	}
	if callMethodFlag != "" {
		req.Method = rest.Method(strings.ToUpper(callMethodFlag))
	}
	if req.Method == "" {
		req.Method = rest.MethodGet
	}

	for _, h := range callHeaderFlags {
		key, value, ok := strings.Cut(h, ":")
		if !ok {
			return nil, fmt.Errorf("invalid header %q, want 'Key: Value'", h)
		}
		req.SetHeader(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	for _, q := range callQueryFlags {
		key, value, ok := strings.Cut(q, "=")
		if !ok {
			return nil, fmt.Errorf("invalid query parameter %q, want key=value", q)
		}
		req.SetQueryParam(key, value)
	}

	if callDataFlag != "" {
		body := []byte(callDataFlag)
		if strings.HasPrefix(callDataFlag, "@") {
			data, err := os.ReadFile(callDataFlag[1:])
			if err != nil {
				return nil, fmt.Errorf("failed to read body file: %w", err)
			}
			body = data
		}
		req.SetBody(body)
	}

	if callTimeoutFlag > 0 {
		req.SetTimeout(time.Duration(callTimeoutFlag) * time.Millisecond)
	}

	return req, nil
}

func issueCall(cmd *cobra.Command, cfg *config.Config, client *rest.Client, formatter *output.ConsoleFormatter, req *rest.Request) error {
	url, urlErr := client.BuildURL(req.BaseURL, req.Endpoint, req.QueryParams)
	if urlErr != nil {
		url = req.BaseURL + req.Endpoint
	}

	start := time.Now()
	reply, err := client.API(req)
	duration := time.Since(start)

	if !callNoHistoryFlag {
		recordCall(cmd, cfg, req, url, reply, duration, err)
	}

	if err != nil {
		return err
	}

	if callExtractFlag != "" {
		if reply.Empty {
			return fmt.Errorf("cannot extract %q from an empty reply", callExtractFlag)
		}
		value, ok := extract.NewExtractor(reply.Response).Body(callExtractFlag)
		if !ok {
			return fmt.Errorf("path %q not found in response body", callExtractFlag)
		}
		formatter.FormatExtracted(callExtractFlag, value)
		return nil
	}

	formatter.FormatReply(string(req.Method), url, reply, duration)
	return nil
}

func recordCall(cmd *cobra.Command, cfg *config.Config, req *rest.Request, url string, reply rest.Reply, duration time.Duration, callErr error) {
	store, err := history.Open(cfg.History)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to open history: %v\n", err)
		return
	}
	defer store.Close()

	entry := &history.Entry{
		Method:   string(req.Method),
		URL:      url,
		Empty:    reply.Empty,
		Duration: duration,
	}
	if reply.Response != nil {
		entry.StatusCode = reply.Response.StatusCode
	}
	if callErr != nil {
		entry.Error = callErr.Error()
	}

	if err := store.Record(entry); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to record call: %v\n", err)
	}
}

func watchAndReissue(cmd *cobra.Command, formatter *output.ConsoleFormatter, issue func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors replace files on save, which drops
	// a watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(callFileFlag)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", callFileFlag, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching %s for changes... (press Ctrl+C to stop)\n", callFileFlag)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var debounceTimer *time.Timer

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(callFileFlag) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "\nFile changed: %s\n", event.Name)
				if err := issue(); err != nil {
					formatter.FormatError(err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			formatter.FormatError(err)

		case <-sigCh:
			return nil
		}
	}
}
