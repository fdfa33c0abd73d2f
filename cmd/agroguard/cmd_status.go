package main

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/agroguard/agroguard/core/pkg/contracts"
	"github.com/spf13/cobra"
)

type checkResult struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Latency string `json:"latency"`
	Error   string `json:"error,omitempty"`
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connectivity to the backend and configured services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			checkers, err := a.healthCheckers(ctx)
			if err != nil {
				return err
			}

			results := make([]checkResult, 0, len(checkers))
			healthy := true
			for _, hc := range checkers {
				r := runCheck(ctx, hc, a.settings.API.Timeout)
				healthy = healthy && r.OK
				results = append(results, r)
			}

			err = a.printer(cmd.OutOrStdout()).print(results, func(w io.Writer) {
				row(w, "SERVICE", "STATUS", "LATENCY", "ERROR")
				for _, r := range results {
					status := "ok"
					if !r.OK {
						status = "down"
					}
					row(w, r.Name, status, r.Latency, r.Error)
				}
			})
			if err != nil {
				return err
			}
			if !healthy {
				return errUnhealthy
			}
			return nil
		},
	}
}

var errUnhealthy = errors.New("one or more services are unavailable")

// healthCheckers lists the API and every optional service enabled in the settings
func (a *app) healthCheckers(ctx context.Context) ([]contracts.HealthChecker, error) {
	client, err := a.apiClient(ctx)
	if err != nil {
		return nil, err
	}
	checkers := []contracts.HealthChecker{client}

	if auth := a.auth(); auth != nil {
		checkers = append(checkers, auth)
	}
	if store, err := a.database(ctx); err != nil {
		checkers = append(checkers, namedCheck{"database", func(context.Context) error { return err }})
	} else {
		checkers = append(checkers, store)
	}

	if cache := a.cacheDriver(); cache != nil {
		checkers = append(checkers, namedCheck{"redis", cache.Ping})
	}
	if a.settings.Kafka.Enabled {
		broker, err := a.messageBroker(ctx)
		if err != nil {
			checkers = append(checkers, namedCheck{"kafka", func(context.Context) error { return err }})
		} else {
			checkers = append(checkers, namedCheck{broker.Name(), broker.Ping})
		}
	}
	return checkers, nil
}

type namedCheck struct {
	name string
	ping func(context.Context) error
}

func (c namedCheck) Name() string                   { return c.name }
func (c namedCheck) Ping(ctx context.Context) error { return c.ping(ctx) }

func runCheck(ctx context.Context, hc contracts.HealthChecker, timeout time.Duration) checkResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := hc.Ping(ctx)
	r := checkResult{
		Name:    hc.Name(),
		OK:      err == nil,
		Latency: time.Since(start).Round(time.Millisecond).String(),
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}
