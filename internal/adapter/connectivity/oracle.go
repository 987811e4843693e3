package connectivity

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/alfanzaky/sitecomply/internal/domain"
	"github.com/alfanzaky/sitecomply/pkg/logger"
	"github.com/alfanzaky/sitecomply/pkg/metrics"
)

const (
	defaultProbeTimeout  = 3 * time.Second
	defaultProbeInterval = 15 * time.Second
)

// Checker performs one reachability probe.
type Checker interface {
	Check(ctx context.Context) bool
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) bool

func (f CheckerFunc) Check(ctx context.Context) bool { return f(ctx) }

// Config tunes the probe.
type Config struct {
	ProbeTimeout  time.Duration
	ProbeInterval time.Duration
}

// Oracle tracks backend reachability. State comes from the platform via Set
// and, when a Checker is configured, from live probes.
type Oracle struct {
	mu        sync.RWMutex
	connected bool
	listeners map[int]domain.ConnectivityListener
	nextID    int

	checker  Checker
	timeout  time.Duration
	interval time.Duration
}

var _ domain.ConnectivityOracle = (*Oracle)(nil)

// NewOracle creates an oracle starting in the given state. checker may be nil.
func NewOracle(initial bool, checker Checker, cfg Config) *Oracle {
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = defaultProbeTimeout
	}
	if cfg.ProbeInterval <= 0 {
		cfg.ProbeInterval = defaultProbeInterval
	}
	metrics.SetConnectivity(initial)
	return &Oracle{
		connected: initial,
		listeners: make(map[int]domain.ConnectivityListener),
		checker:   checker,
		timeout:   cfg.ProbeTimeout,
		interval:  cfg.ProbeInterval,
	}
}

// CurrentState probes when a checker is configured, otherwise it returns
// the last state the platform reported.
func (o *Oracle) CurrentState(ctx context.Context) domain.ConnectivityState {
	if o.checker == nil {
		o.mu.RLock()
		defer o.mu.RUnlock()
		return domain.ConnectivityState{Connected: o.connected}
	}
	return domain.ConnectivityState{Connected: o.probe(ctx)}
}

// Subscribe registers listener for every transition.
func (o *Oracle) Subscribe(listener domain.ConnectivityListener) func() {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.listeners[id] = listener
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.listeners, id)
			o.mu.Unlock()
		})
	}
}

// Set records a state reported by the platform.
func (o *Oracle) Set(connected bool) {
	o.update(connected)
}

// Run probes on an interval until ctx is done. Without a checker it returns immediately.
func (o *Oracle) Run(ctx context.Context) {
	if o.checker == nil {
		return
	}

	logger.Info("Connectivity probe started", logger.Duration("interval", o.interval))

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	o.probe(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info("Connectivity probe stopped")
			return
		case <-ticker.C:
			o.probe(ctx)
		}
	}
}

func (o *Oracle) probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	connected := o.checker.Check(ctx)
	o.update(connected)
	return connected
}

func (o *Oracle) update(connected bool) {
	o.mu.Lock()
	changed := o.connected != connected
	o.connected = connected
	var listeners []domain.ConnectivityListener
	if changed {
		listeners = make([]domain.ConnectivityListener, 0, len(o.listeners))
		for _, l := range o.listeners {
			listeners = append(listeners, l)
		}
	}
	o.mu.Unlock()

	if !changed {
		return
	}

	metrics.SetConnectivity(connected)
	logger.Info("Connectivity changed", logger.Bool("connected", connected))

	state := domain.ConnectivityState{Connected: connected}
	for _, l := range listeners {
		l(state)
	}
}

// HTTPChecker treats any HTTP answer below 500 as reachable.
type HTTPChecker struct {
	URL    string
	Client *http.Client
}

// NewHTTPChecker creates a checker for url.
func NewHTTPChecker(url string, client *http.Client) *HTTPChecker {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPChecker{URL: url, Client: client}
}

func (c *HTTPChecker) Check(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.URL, nil)
	if err != nil {
		return false
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		logger.Debug("Connectivity probe failed", logger.String("url", c.URL), logger.ErrorField(err))
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}
