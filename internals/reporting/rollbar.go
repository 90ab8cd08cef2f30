// Package reporting forwards unexpected errors to Rollbar when a token is configured.
package reporting

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/rollbar/rollbar-go"

	"schoolfee_backend/internals/configs"
)

var enabled bool

// Init configures the Rollbar client. Without a token reporting only logs.
func Init(cfg configs.Config) {
	if cfg.RollbarToken == "" {
		rollbar.SetEnabled(false)
		log.Println("[INFO] rollbar disabled (ROLLBAR_TOKEN not set)")
		return
	}
	host, _ := os.Hostname()
	rollbar.SetToken(cfg.RollbarToken)
	rollbar.SetEnvironment(cfg.Env)
	rollbar.SetCodeVersion(cfg.BuildVersion)
	rollbar.SetServerHost(host)
	rollbar.SetEnabled(true)
	enabled = true
	log.Println("[INFO] rollbar enabled")
}

func Enabled() bool { return enabled }

// Error logs err and ships it with extras.
func Error(ctx context.Context, err error, extras map[string]interface{}) {
	if err == nil {
		return
	}
	log.Printf("[ERROR] %v %v", err, extras)
	if enabled {
		rollbar.ErrorWithExtrasAndContext(ctx, rollbar.ERR, err, extras)
	}
}

// Recovered reports a recovered panic value.
func Recovered(ctx context.Context, where string, r interface{}) {
	Error(ctx, fmt.Errorf("panic in %s: %v", where, r), map[string]interface{}{"where": where})
}

// Close flushes queued items; call on shutdown.
func Close() {
	if enabled {
		rollbar.Close()
	}
}
