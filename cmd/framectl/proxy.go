package main

import (
	"errors"
	"io"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/indigo-web/framed/config"
	"github.com/indigo-web/framed/jsonrpc"
	"github.com/indigo-web/framed/stream"
	"github.com/indigo-web/framed/transport"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Forward framed messages between TCP peers, logging each of them",
	Long: `Accept connections on the listen address and forward every one of them to the upstream.
Messages are re-framed on the way and, at debug level, logged with their JSON-RPC id and
method. Idle sessions are kept open unless net.read_timeout is set in the config. The first
interrupt closes all the sessions, the second one kills the process.

Examples:
  framectl proxy --listen :9000 --upstream localhost:9001
  framectl proxy --listen :9000 --upstream localhost:9001 --log-level debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		p := newProxy(cfg, proxyUpstream, logrus.NewEntry(logger))
		tcp := transport.NewTCP()
		if err = tcp.Bind(proxyListen); err != nil {
			return err
		}

		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-signals
			// the next signal falls back to the default behaviour, terminating the process
			signal.Stop(signals)
			logger.Info("shutting down")
			tcp.Stop()
			p.shutdown()
		}()

		logger.Infof("proxying %s -> %s", tcp.Addr(), proxyUpstream)
		err = tcp.Listen(cfg.NET, p.serve)
		tcp.Close()
		tcp.Wait()

		return err
	},
}

var (
	proxyListen   string
	proxyUpstream string
)

func init() {
	proxyCmd.Flags().StringVar(&proxyListen, "listen", "localhost:9000", "address to accept connections on")
	proxyCmd.Flags().StringVar(&proxyUpstream, "upstream", "", "address to forward connections to (required)")
	_ = proxyCmd.MarkFlagRequired("upstream")
}

type proxy struct {
	cfg      *config.Config
	upstream string
	log      *logrus.Entry

	mu       sync.Mutex
	conns    map[net.Conn]struct{}
	closing  bool
}

func newProxy(cfg *config.Config, upstream string, log *logrus.Entry) *proxy {
	return &proxy{
		cfg:      cfg,
		upstream: upstream,
		log:      log,
		conns:    make(map[net.Conn]struct{}),
	}
}

func (p *proxy) serve(conn net.Conn) {
	log := p.log.WithField("remote", conn.RemoteAddr().String())
	upstream, err := net.Dial("tcp", p.upstream)
	if err != nil {
		log.WithError(err).Error("cannot reach upstream")
		return
	}

	if !p.track(conn, upstream) {
		_ = upstream.Close()
		return
	}

	defer p.untrack(conn, upstream)

	downClient := transport.NewClient(conn, p.cfg.NET.ReadTimeout, make([]byte, p.cfg.NET.ReadBufferSize))
	upClient := transport.NewClient(upstream, p.cfg.NET.ReadTimeout, make([]byte, p.cfg.NET.ReadBufferSize))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		p.pump(downClient, upClient, log.WithField("direction", "->"))
		// closing both ends unblocks the opposite pump
		_ = upClient.Close()
		_ = downClient.Close()
	}()
	go func() {
		defer wg.Done()
		p.pump(upClient, downClient, log.WithField("direction", "<-"))
		_ = upClient.Close()
		_ = downClient.Close()
	}()
	wg.Wait()
}

// track registers the session's connections, so shutdown can close them. It fails if the
// proxy is already shutting down.
func (p *proxy) track(conns ...net.Conn) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closing {
		return false
	}

	for _, conn := range conns {
		p.conns[conn] = struct{}{}
	}

	return true
}

func (p *proxy) untrack(conns ...net.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, conn := range conns {
		delete(p.conns, conn)
	}
}

// shutdown closes every live session and refuses new ones. Pumps see closed connections
// and return, so the listener's Wait doesn't hang on idle editors.
func (p *proxy) shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closing = true
	for conn := range p.conns {
		_ = conn.Close()
	}
}

// pump forwards messages from src to dst until either of them fails.
func (p *proxy) pump(src, dst transport.Client, log *logrus.Entry) {
	reader := stream.NewReader(src, p.cfg, log)
	writer := stream.NewWriter(dst, p.cfg.Writer.ContentType)

	for {
		payload, err := reader.Read()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				log.WithError(err).Warn("reading failed")
			}

			return
		}

		if log.Logger.IsLevelEnabled(logrus.DebugLevel) {
			describe(log, payload).Debug("message")
		}

		if err = writer.WriteMessage(payload); err != nil {
			if !errors.Is(err, net.ErrClosed) {
				log.WithError(err).Warn("writing failed")
			}

			return
		}
	}
}

// describe attaches the JSON-RPC identity of the payload to the log entry. Payloads which
// aren't JSON-RPC are described by their size only.
func describe(log *logrus.Entry, payload []byte) *logrus.Entry {
	log = log.WithField("size", len(payload))
	env, err := jsonrpc.Peek(payload)
	if err != nil {
		return log.WithField("kind", "opaque")
	}

	fields := logrus.Fields{}
	switch {
	case env.IsRequest():
		fields["kind"] = "request"
	case env.IsNotification():
		fields["kind"] = "notification"
	case env.IsResponse():
		fields["kind"] = "response"
	default:
		fields["kind"] = "unknown"
	}

	if env.ID != nil {
		fields["id"] = env.ID.String()
	}

	if len(env.Method) > 0 {
		fields["method"] = env.Method
	}

	if env.Error != nil {
		fields["rpc_error"] = env.Error.Message
	}

	return log.WithFields(fields)
}
