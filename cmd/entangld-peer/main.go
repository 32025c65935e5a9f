// Command entangld-peer is a reference transport for the entangld
// Datastore: one side of a two-process mesh joined by a newline-framed
// JSON TCP connection.
//
// Every Message is wrapped in the sample transport's envelope, framed by
// a trailing newline:
//
//	{"type":"Entangld_Message","data":{"type":"get","path":"...", ...}}
//
// The envelope is this binary's convention, not a requirement of the
// entangld package itself (see its package doc).
//
// Usage:
//
//	entangld-peer --listen=:4100 --namespace=store_b --peer=localhost:4101
//
// Two entangld-peer processes, each naming the other via --namespace, form
// a two-node mesh when the second is started with --peer set to the
// first's --listen address. The dial is attempted once at startup and a
// failure is fatal, so the listening side must already be running. Once
// joined, gets, sets, pushes, and subscriptions that a Datastore issues
// against <namespace>.<path> cross the socket and resolve against the
// other side's tree. This binary issues none itself: it attaches the
// remote and answers the messages that arrive.
package main

import (
	"bufio"
	"encoding/json"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/docopt/docopt-go"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/dreamware/entangld"
)

const peerVersion = "0.1.0"

const envelopeType = "Entangld_Message"

// envelope is the sample transport's wire wrapper around a Message.
type envelope struct {
	Type string           `json:"type"`
	Data entangld.Message `json:"data"`
}

// config is the optional YAML file used to seed a peer's initial tree,
// the sample binary's only configuration beyond its command-line flags.
type config struct {
	Initial map[string]interface{} `yaml:"initial"`
}

func loadConfig(path string) (config, error) {
	var cfg config
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newLogger(debug bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}

func main() {
	usage := `Entangld peer.

Runs one side of a two-process Entangld mesh over a newline-framed JSON
TCP connection: it attaches the peer and answers the get, set, push,
subscribe, and unsubscribe messages that arrive over the socket.

Usage:
  entangld-peer --listen=<addr> --namespace=<ns> [--peer=<addr>] [--config=<file>] [--debug]
  entangld-peer -h | --help

Options:
  -h --help         Show this screen.
  --version         Show version.
  --listen=<addr>   Address to accept the peer connection on.
  --peer=<addr>     Address of the remote peer to dial, if any.
  --namespace=<ns>  Name this side attaches the remote under.
  --config=<file>   Optional YAML file seeding this side's initial data.
  --debug           Enable debug-level logging (outbound remote gets only).`

	opts, err := docopt.ParseArgs(usage, os.Args[1:], peerVersion)
	if err != nil {
		panic(err)
	}

	listen, _ := opts.String("--listen")
	namespace, _ := opts.String("--namespace")
	peerAddr, _ := opts.String("--peer")
	configPath, _ := opts.String("--config")
	debug, _ := opts.Bool("--debug")

	logger := newLogger(debug)
	defer logger.Sync()

	cfg, err := loadConfig(configPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	dsOpts := []entangld.Option{entangld.WithLogger(logger)}
	if cfg.Initial != nil {
		dsOpts = append(dsOpts, entangld.WithInitialData(cfg.Initial))
	}

	p := &peer{namespace: namespace, store: entangld.New(dsOpts...), log: logger}

	if peerAddr != "" {
		go p.dial(peerAddr)
	}
	if listen != "" {
		go p.listen(listen)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("entangld-peer stopped")
}

// peer owns the single socket this process joins its Datastore to. A
// real multi-peer mesh would key connections by namespace the way
// RemoteRegistry keys remotes by name; this sample assumes one peer.
type peer struct {
	namespace string
	store     *entangld.Datastore
	log       *zap.Logger

	mu   sync.Mutex
	conn net.Conn
}

// send is the Handler entangld invokes to transmit a Message across the
// socket. It owns serialization and framing, per the Handler contract.
func (p *peer) send(msg entangld.Message) {
	p.mu.Lock()
	conn := p.conn
	p.mu.Unlock()

	if conn == nil {
		p.log.Warn("send: no connection", zap.String("type", string(msg.Type)))
		return
	}

	raw, err := json.Marshal(envelope{Type: envelopeType, Data: msg})
	if err != nil {
		p.log.Error("marshal outbound message", zap.Error(err))
		return
	}
	raw = append(raw, '\n')
	if _, err := conn.Write(raw); err != nil {
		p.log.Error("write outbound message", zap.Error(err))
	}
}

func (p *peer) attachTo(conn net.Conn) {
	p.mu.Lock()
	p.conn = conn
	p.mu.Unlock()

	if err := p.store.Attach(p.namespace, p.send); err != nil {
		p.log.Fatal("attach", zap.Error(err))
	}

	p.readLoop(conn)
}

// readLoop is this sample's single reader: every inbound Message is
// decoded and handed to Receive on this one goroutine, so entangld's
// single-threaded, cooperative contract holds for the lifetime of the
// connection.
func (p *peer) readLoop(conn net.Conn) {
	defer conn.Close()
	defer p.store.Detach(p.namespace)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var env envelope
		if err := json.Unmarshal(scanner.Bytes(), &env); err != nil {
			p.log.Warn("unmarshal inbound message", zap.Error(err))
			continue
		}
		if env.Type != envelopeType {
			p.log.Warn("unexpected envelope type", zap.String("type", env.Type))
			continue
		}
		if err := p.store.Receive(env.Data, p.namespace); err != nil {
			p.log.Warn("receive", zap.Error(err), zap.String("type", string(env.Data.Type)))
		}
	}
	if err := scanner.Err(); err != nil {
		p.log.Warn("connection closed", zap.Error(err))
	}
}

func (p *peer) dial(addr string) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		p.log.Fatal("dial peer", zap.String("addr", addr), zap.Error(err))
	}
	p.log.Info("dialed peer", zap.String("addr", addr))
	p.attachTo(conn)
}

func (p *peer) listen(addr string) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		p.log.Fatal("listen", zap.String("addr", addr), zap.Error(err))
	}
	p.log.Info("listening", zap.String("addr", addr))

	conn, err := ln.Accept()
	if err != nil {
		p.log.Error("accept", zap.Error(err))
		return
	}
	p.log.Info("accepted peer connection")
	p.attachTo(conn)
}
