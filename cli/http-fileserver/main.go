package main

import (
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/sagernet/sing-devserver/extensions/fileserver"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	f := new(Flags)

	command := &cobra.Command{
		Use:   "http-fileserver",
		Short: "static file server with permissive CORS headers for local development",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			run(cmd, f)
		},
	}

	command.Flags().StringVarP(&f.Listen, "listen", "b", "", "Store the listen address. (default: all interfaces)")
	command.Flags().Uint16VarP(&f.Port, "port", "p", 0, "Store the listen port. (default 8000)")
	command.Flags().StringVarP(&f.Directory, "directory", "d", "", "Store the served directory. (default: the directory containing this program)")
	command.Flags().BoolVar(&f.NoListing, "no-listing", false, "Answer 404 for directories without index.html.")
	command.Flags().StringVar(&f.LogLevel, "log-level", "", "Store the log level. [possible values: trace, debug, info, warn, error]")
	command.Flags().StringVarP(&f.ConfigFile, "config", "c", "", "Use a configuration file.")
	err := command.Execute()
	if err != nil {
		logrus.Fatal(err)
	}
}

func run(cmd *cobra.Command, f *Flags) {
	s, err := newServer(f)
	if err != nil {
		logrus.StandardLogger().Log(logrus.FatalLevel, err, "\n\n")
		cmd.Help()
		os.Exit(1)
	}

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, os.Interrupt, syscall.SIGTERM)
	err = serve(s, color.Output, osSignals)
	if err != nil {
		logrus.Fatal(err)
	}
}

// serve starts s, prints the banner to w and blocks until stop fires, then
// shuts s down and prints the farewell.
func serve(s *fileserver.Server, w io.Writer, stop <-chan os.Signal) error {
	err := s.Start()
	if err != nil {
		return err
	}

	port := fileserver.DefaultPort
	if addr, isTCP := s.Addr().(*net.TCPAddr); isTCP {
		port = addr.Port
	}
	color.New(color.FgGreen).Fprintf(w, "🚀 Server running at http://localhost:%d/\n", port)
	color.New(color.FgCyan).Fprintf(w, "📁 Serving directory: %s\n", s.Root())
	fmt.Fprintln(w, "Press Ctrl+C to stop the server")

	<-stop

	err = s.Close()
	if err != nil {
		logrus.Warn(err)
	}
	color.New(color.FgYellow).Fprintln(w, "\n👋 Server stopped")
	return nil
}
