// cmd/serve.go

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"syscall"

	"AveRAM/pkg/device"
	"AveRAM/pkg/version"

	"github.com/google/gops/agent"
	"github.com/juicedata/godaemon"
	"github.com/urfave/cli/v2"
)

func serveFlags() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "create devices and serve their attributes over HTTP",
		Action: serve,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "devices",
				Aliases: []string{"n"},
				Value:   1,
				Usage:   "number of devices to create",
			},
			&cli.IntFlag{
				Name:  "page-size",
				Usage: "page size in bytes (default: OS page size)",
			},
			&cli.StringFlag{
				Name:  "compress",
				Value: "lz4",
				Usage: "compression algorithm (lz4, zstd, none)",
			},
			&cli.StringFlag{
				Name:  "listen",
				Value: "127.0.0.1:9777",
				Usage: "address to serve attributes on",
			},
			&cli.BoolFlag{
				Name:    "d",
				Aliases: []string{"background"},
				Usage:   "run in background",
			},
			&cli.StringFlag{
				Name:  "log",
				Value: "/var/log/averam.log",
				Usage: "path of log file when running in background",
			},
			&cli.BoolFlag{
				Name:  "no-agent",
				Usage: "disable the diagnostic agent",
			},
		},
	}
}

func makeDaemon(c *cli.Context) error {
	var attrs godaemon.DaemonAttr
	if godaemon.Stage() == 0 {
		var err error
		logfile := c.String("log")
		attrs.Stdout, err = os.OpenFile(logfile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			logger.Errorf("open log file %s: %s", logfile, err)
		}
	}
	_, _, err := godaemon.MakeDaemon(&attrs)
	return err
}

func serve(c *cli.Context) error {
	setLoggerLevel(c)
	if c.Bool("d") {
		if err := makeDaemon(c); err != nil {
			logger.Fatalf("make daemon: %s", err)
		}
	}
	if !c.Bool("no-agent") {
		go func() {
			if err := agent.Listen(agent.Options{}); err != nil {
				logger.Warnf("diagnostic agent: %s", err)
			}
		}()
	}

	conf := device.Config{
		MaxDevices:  c.Int("devices"),
		PageSize:    c.Int("page-size"),
		Compression: c.String("compress"),
	}
	r := device.NewRegistry(conf)
	logger.Infof("registry %s created with %d devices", r.UUID(), len(r.Devices()))

	addr := c.String("listen")
	logger.Infof("serving device attributes at http://%s/", addr)
	return http.ListenAndServe(addr, newHandler(r))
}

func newHandler(r *device.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		path := strings.Trim(req.URL.Path, "/")
		if path == "" {
			writeIndex(w, r)
			return
		}
		parts := strings.SplitN(path, "/", 2)
		if len(parts) != 2 {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		d := r.Lookup(parts[0])
		if d == nil {
			http.Error(w, "no such device", http.StatusNotFound)
			return
		}
		switch req.Method {
		case http.MethodGet:
			out, errno := r.Show(d.BlockObject(), parts[1])
			if errno != 0 {
				httpError(w, errno)
				return
			}
			w.Header().Set("Content-Type", "text/plain")
			_, _ = io.WriteString(w, out)
		case http.MethodPost, http.MethodPut:
			body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, 128))
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			n, errno := r.Store(d.BlockObject(), parts[1], string(body))
			if errno != 0 {
				httpError(w, errno)
				return
			}
			fmt.Fprintf(w, "%d\n", n)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	return mux
}

func writeIndex(w http.ResponseWriter, r *device.Registry) {
	var names []string
	for _, d := range r.Devices() {
		names = append(names, d.Name())
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"UUID":       r.UUID(),
		"Version":    version.Version(),
		"Devices":    names,
		"Attributes": device.Attrs(),
	})
}

func httpError(w http.ResponseWriter, errno syscall.Errno) {
	var code int
	switch errno {
	case syscall.EBUSY:
		code = http.StatusConflict
	case syscall.EINVAL:
		code = http.StatusBadRequest
	case syscall.ENOENT, syscall.ENODEV:
		code = http.StatusNotFound
	default:
		code = http.StatusInternalServerError
	}
	http.Error(w, errno.Error(), code)
}
