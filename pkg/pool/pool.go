// Package pool implements the bounded fan-out dispatcher that drains a
// request channel of URIs with N independent checker clients running in
// parallel and publishes one Response per URI onto a response channel.
package pool

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/your-ko/link-validator/pkg/checker"
	"github.com/your-ko/link-validator/pkg/config"
	"github.com/your-ko/link-validator/pkg/exclude"
	"github.com/your-ko/link-validator/pkg/uri"
)

// Pool owns N checker.Client instances and drains a request channel with
// them until it closes. Each worker owns its client outright for the run,
// so connection pools and TLS session caches never cross worker
// boundaries and no client needs shared-state synchronization.
type Pool struct {
	cfg    *config.Config
	policy *exclude.Policy
	logger *zap.Logger
	size   int
}

// New builds a Pool of size workers, each running an independently
// constructed checker.Client built from cfg and policy.
func New(cfg *config.Config, policy *exclude.Policy, logger *zap.Logger) *Pool {
	if logger == nil {
		logger = zap.NewNop()
	}
	size := cfg.MaxConcurrency
	if size < 1 {
		size = 1
	}
	return &Pool{cfg: cfg, policy: policy, logger: logger, size: size}
}

// Run drains requests with Pool's workers until requests is closed, then
// waits for in-flight checks to finish and closes responses. Every URI
// read from requests produces exactly one Response on responses, even if
// a worker's checker.Client panics mid-check: the panic is recovered, a
// synthetic Status.Error response is emitted for the URI that was
// in-flight, and a replacement worker takes over so the response
// channel's promised cardinality holds.
func (p *Pool) Run(ctx context.Context, requests <-chan uri.URI, responses chan<- checker.Response) {
	var wg sync.WaitGroup
	for i := 0; i < p.size; i++ {
		wg.Add(1)
		go p.runWorker(ctx, requests, responses, &wg)
	}
	wg.Wait()
	close(responses)
}

// runWorker repeatedly builds a fresh checker.Client and drains requests
// with it until requests is closed or the client panics. On panic it
// restarts with a new client so the pool's worker count never drops.
func (p *Pool) runWorker(ctx context.Context, requests <-chan uri.URI, responses chan<- checker.Response, wg *sync.WaitGroup) {
	defer wg.Done()

	client := checker.New(p.cfg, p.policy, p.logger)
	for {
		done, recovered := p.drain(ctx, client, requests, responses)
		if done {
			return
		}
		if recovered != nil {
			p.logger.Error("checker worker recovered from panic, restarting", zap.Any("panic", recovered))
			client = checker.New(p.cfg, p.policy, p.logger)
		}
	}
}

// drain pulls URIs off requests and checks them with client until the
// channel closes (done == true) or a panic is recovered (recovered != nil,
// with a synthetic Error response already emitted for the in-flight URI).
func (p *Pool) drain(ctx context.Context, client *checker.Client, requests <-chan uri.URI, responses chan<- checker.Response) (done bool, recovered any) {
	var current uri.URI
	var inFlight bool

	defer func() {
		if r := recover(); r != nil {
			recovered = r
			if inFlight {
				responses <- checker.Response{
					URI:    current,
					Status: checker.Status{Kind: checker.Error, Message: "checker worker crashed"},
				}
			}
		}
	}()

	for {
		u, ok := <-requests
		if !ok {
			return true, nil
		}
		current, inFlight = u, true
		resp := client.Check(ctx, u)
		inFlight = false
		responses <- resp
	}
}
