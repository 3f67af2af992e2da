package callback

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/specialistvlad/nmgraph/internal/ctxlog"
	"github.com/specialistvlad/nmgraph/internal/nodeid"
	"github.com/specialistvlad/nmgraph/internal/tensor"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Emitter sends one event with a payload.
type Emitter interface {
	Emit(ctx context.Context, event string, payload map[string]any) error
	Close() error
}

// SocketIO publishes training metrics to a socket.io server every StepFreq
// steps: the scalar value of each handle plus any float64 found in
// State.Shared (e.g. evaluation results).
//
// When Emitter is nil, Dial connects one at train start. Close releases the
// emitter.
type SocketIO struct {
	Emitter  Emitter
	Dial     func(ctx context.Context) (Emitter, error)
	Event    string
	Handles  []nodeid.Handle
	Labels   []string
	StepFreq int
}

var (
	_ TensorRequester = (*SocketIO)(nil)
	_ TrainStarter    = (*SocketIO)(nil)
	_ BatchEnder      = (*SocketIO)(nil)
	_ TrainEnder      = (*SocketIO)(nil)
	_ Closer          = (*SocketIO)(nil)
)

func (c *SocketIO) Tensors() []nodeid.Handle {
	return c.Handles
}

func (c *SocketIO) OnTrainStart(ctx context.Context, _ *State) error {
	if c.Emitter != nil {
		return nil
	}
	if c.Dial == nil {
		return errors.New("socketio: neither an emitter nor a dial function is set")
	}
	em, err := c.Dial(ctx)
	if err != nil {
		return fmt.Errorf("socketio: %w", err)
	}
	c.Emitter = em
	return nil
}

func (c *SocketIO) OnBatchEnd(ctx context.Context, s *State) error {
	freq := c.StepFreq
	if freq <= 0 {
		freq = 1
	}
	if !s.Stepped || s.Step%freq != 0 {
		return nil
	}
	payload, err := c.payload(s)
	if err != nil {
		return err
	}
	return c.Emitter.Emit(ctx, c.Event, payload)
}

func (c *SocketIO) OnTrainEnd(ctx context.Context, s *State) error {
	payload, err := c.payload(s)
	if err != nil {
		return err
	}
	payload["done"] = true
	return c.Emitter.Emit(ctx, c.Event, payload)
}

// Close closes the emitter. It is a no-op when none is connected.
func (c *SocketIO) Close(context.Context) error {
	if c.Emitter == nil {
		return nil
	}
	err := c.Emitter.Close()
	c.Emitter = nil
	return err
}

func (c *SocketIO) payload(s *State) (map[string]any, error) {
	metrics := make(map[string]any, len(c.Handles))
	for i, h := range c.Handles {
		name := h.String()
		if i < len(c.Labels) && c.Labels[i] != "" {
			name = c.Labels[i]
		}
		v, ok := s.Tensors[h]
		if !ok {
			continue
		}
		f, err := tensor.Scalar(v)
		if err != nil {
			return nil, fmt.Errorf("socketio metric '%s': %w", name, err)
		}
		metrics[name] = f
	}

	keys := make([]string, 0, len(s.Shared))
	for k := range s.Shared {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if f, ok := s.Shared[k].(float64); ok {
			metrics[k] = f
		}
	}

	return map[string]any{
		"run_id":  s.RunID,
		"step":    s.Step,
		"epoch":   s.Epoch,
		"lr":      s.LR,
		"metrics": metrics,
	}, nil
}

// SocketEmitter is an Emitter backed by a connected socket.io client.
type SocketEmitter struct {
	io *socket.Socket
}

// Emit sends the payload.
func (e *SocketEmitter) Emit(ctx context.Context, event string, payload map[string]any) error {
	if !e.io.Connected() {
		return fmt.Errorf("socket.io client is not connected")
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding '%s' payload: %w", event, err)
	}
	ctxlog.FromContext(ctx).Debug("Emitting event", "event", event, "data", string(jsonData))
	e.io.Emit(event, payload)
	return nil
}

// Close disconnects the client.
func (e *SocketEmitter) Close() error {
	e.io.Disconnect()
	return nil
}

// DialSocketIO connects to a socket.io server and waits for the connection.
func DialSocketIO(ctx context.Context, rawURL, namespace string, insecureSkipVerify bool) (*SocketEmitter, error) {
	logger := ctxlog.FromContext(ctx).With("callback", "socketio", "url", rawURL)
	logger.Info("Connecting metrics client...")

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	opts := socket.DefaultOptions()
	path := parsedURL.Path
	if path == "" || path == "/" {
		path = "/socket.io/"
	}
	opts.SetPath(path)
	if insecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	if !strings.HasPrefix(namespace, "/") {
		namespace = "/" + namespace
	}
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "sid", io.Id())
		connectChan <- nil
	})

	io.Once(types.EventName("connect_error"), func(errs ...any) {
		connectChan <- connectError(errs)
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &SocketEmitter{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(15 * time.Second):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after 15s waiting for socket.io connection")
	}
}

func connectError(args []any) error {
	if len(args) == 0 {
		return errors.New("connect_error without details")
	}
	if err, ok := args[0].(error); ok && err != nil {
		return err
	}
	return fmt.Errorf("%v", args[0])
}
