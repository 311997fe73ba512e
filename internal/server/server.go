package server

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/emberstate/emberfront/internal/builder"
	"github.com/emberstate/emberfront/internal/elogger"
	"github.com/emberstate/emberfront/internal/watcher"

	_ "embed"
)

//go:embed livereload.html
var liveReloadScript []byte

var upgrader = websocket.Upgrader{
	HandshakeTimeout: 10 * time.Second,
	Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
		w.WriteHeader(500)
	},
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Server struct {
	sourceDir    string
	buildDir     string
	rootDir      string
	port         string
	override404  string
	configFile   string
	reload       bool
	reloadBroker *Broker
	buildtool    *builder.Builder
}

func (s *Server) TriggerReload() {
	s.reloadBroker.Publish(struct{}{})
}

func NewServer(sourceDir, buildDir, rootDir, port, override404, configFile string, reload bool) *Server {
	s := &Server{
		sourceDir:    sourceDir,
		rootDir:      rootDir,
		buildDir:     buildDir,
		port:         port,
		override404:  override404,
		configFile:   configFile,
		reload:       reload,
		reloadBroker: newBroker(),
		buildtool:    builder.NewBuilder(sourceDir, buildDir, rootDir),
	}
	// Dev rebuilds stay readable, minification is for release builds.
	s.buildtool.Minify = false

	return s
}

// Builder exposes the server's build tool so callers can adjust it before
// Start, the serve loop owns it afterwards.
func (s *Server) Builder() *builder.Builder {
	return s.buildtool
}

func (s *Server) Start(withBuilder bool) error {
	var wch *watcher.Watcher

	if s.reload {
		go s.reloadBroker.Start()
	}

	if withBuilder {
		err := s.buildtool.Init()
		if err != nil {
			return err
		}

		err = s.buildtool.Build()
		if err != nil {
			os.Exit(1)
		}

		wch, err = watcher.Start(s.sourceDir, s.configFile)
		if err != nil {
			return err
		}

		go func() {
			for {
				_, ok := <-wch.Events
				if !ok {
					return
				}
				// Drain the burst, one rebuild per quiet period.
			rootFor:
				for {
					select {
					case _, ok := <-wch.Events:
						if !ok {
							return
						}
						continue
					case <-time.After(time.Millisecond * 500):
						break rootFor
					}
				}
				s.buildtool.Build()
				if s.reload {
					s.TriggerReload()
				}
			}
		}()
	}

	r := mux.NewRouter()
	r.PathPrefix("/").HandlerFunc(s.fileServer(s.buildDir, s.override404))

	httpServer := &http.Server{
		Addr:    ":" + s.port,
		Handler: r,
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupt
		elogger.Info("msg", "Shutting down")
		if wch != nil {
			wch.Close()
		}
		if s.reload {
			s.reloadBroker.Stop()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		httpServer.Shutdown(ctx)
	}()

	// We use println here so the address can be copied or opened directly from the terminal
	fmt.Println("Listening on http://localhost:" + s.port)

	err := httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) fileServer(dir string, override404 string) func(http.ResponseWriter, *http.Request) {
	if override404 != "" && !strings.HasPrefix(override404, "/") {
		override404 = "/" + override404
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if s.reload && r.URL.Path == "/__internal/livereload" {
			s.livereloadHandler(w, r)
			return
		}
	begin:
		upath := r.URL.Path
		if !strings.HasPrefix(upath, "/") {
			upath = "/" + upath
			r.URL.Path = upath
		}

		const indexPage = "index.html"

		fullName := filepath.Join(dir, filepath.FromSlash(path.Clean(upath)))

		if fullName[len(fullName)-1] == '/' {
			fullName = filepath.Join(fullName, indexPage)
		}

		info, err := os.Stat(fullName)

		valid := false
		if err != nil || info.IsDir() {
			if err != nil && !os.IsNotExist(err) {
				w.WriteHeader(500)
				w.Write([]byte("Internal error: can't open file: " + err.Error()))
				return
			}

			info, err = os.Stat(fullName + ".html")
			if err != nil || info.IsDir() {
				if err != nil && !os.IsNotExist(err) {
					w.WriteHeader(500)
					w.Write([]byte("Internal error: can't open file: " + err.Error()))
					return
				}

				info, err := os.Stat(filepath.Join(fullName, indexPage))
				if err != nil || info.IsDir() {
					if err != nil && !os.IsNotExist(err) {
						w.WriteHeader(500)
						w.Write([]byte("Internal error: can't open file: " + err.Error()))
					}
				} else {
					fullName = filepath.Join(fullName, indexPage)
					valid = true
				}
			} else {
				fullName = fullName + ".html"
				valid = true
			}
		} else {
			valid = true
		}

		if !valid {
			if override404 != "" && r.URL.Path != override404 {
				r.URL.Path = override404
				goto begin
			}
			w.WriteHeader(404)
			w.Write([]byte("404 page not found"))
			return
		}

		content, err := os.Open(fullName)
		if err != nil {
			w.WriteHeader(500)
			w.Write([]byte("Internal error: can't open file"))
			return
		}
		defer content.Close()

		ctype := mime.TypeByExtension(filepath.Ext(fullName))
		if ctype == "" {
			// read a chunk to decide between utf-8 text and binary
			var buf [512]byte
			n, _ := io.ReadFull(content, buf[:])
			ctype = http.DetectContentType(buf[:n])
			_, err := content.Seek(0, io.SeekStart) // rewind to output whole file
			if err != nil {
				w.WriteHeader(500)
				w.Write([]byte("Internal error: can't seek file: " + err.Error()))
				return
			}
		}
		w.Header().Set("Content-Type", ctype)
		io.Copy(w, content)
		if s.reload && strings.HasPrefix(ctype, "text/html") {
			_, err = w.Write(liveReloadScript)
			if err != nil {
				elogger.Error("msg", "could not inject live reload", "error", err)
			}
		}
	}
}

func (s *Server) livereloadHandler(w http.ResponseWriter, r *http.Request) {
	elogger.Debug("msg", "WS Established")

	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		w.WriteHeader(500)
		w.Write([]byte(err.Error()))
		return
	}
	defer c.Close()
	waitCh := s.reloadBroker.Subscribe()
	<-waitCh
	err = c.WriteMessage(websocket.TextMessage, []byte("reload"))
	if err != nil {
		elogger.Warn("msg", "Reload socket error", "error", err)
	}
	s.reloadBroker.Unsubscribe(waitCh)
}
