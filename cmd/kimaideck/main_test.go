package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/five82/kimaideck/internal/app"
)

func execute(t *testing.T, args ...string) (app.Options, bool, string, error) {
	t.Helper()
	var got app.Options
	called := false
	cmd := newRootCommand(func(ctx context.Context, opts app.Options) error {
		called = true
		got = opts
		return nil
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return got, called, out.String(), err
}

func TestRootCommand_RequiresConfigPath(t *testing.T) {
	_, called, out, err := execute(t)
	if err == nil {
		t.Fatalf("execute without config returned nil error")
	}
	if called {
		t.Fatalf("app ran without a config path")
	}
	if !strings.Contains(out, "kimaideck <config>") {
		t.Fatalf("usage not printed, output = %q", out)
	}
}

func TestRootCommand_RejectsExtraArgs(t *testing.T) {
	if _, called, _, err := execute(t, "a.toml", "b.toml"); err == nil || called {
		t.Fatalf("execute with two configs: err = %v, called = %v", err, called)
	}
}

func TestRootCommand_PassesOptions(t *testing.T) {
	opts, called, _, err := execute(t,
		"--driver", "evdev",
		"--log-level", "debug",
		"--log-file", "/tmp/deck.log",
		"--preview", ":9000",
		"deck.toml",
	)
	if err != nil {
		t.Fatalf("execute returned error: %v", err)
	}
	if !called {
		t.Fatalf("app did not run")
	}
	want := app.Options{
		ConfigPath: "deck.toml",
		Driver:     "evdev",
		LogLevel:   "debug",
		LogFile:    "/tmp/deck.log",
		Preview:    ":9000",
	}
	if opts != want {
		t.Fatalf("options = %+v, want %+v", opts, want)
	}
}

func TestRootCommand_ReturnsAppError(t *testing.T) {
	boom := errors.New("load config: config /nope.toml does not exist")
	cmd := newRootCommand(func(context.Context, app.Options) error { return boom })
	cmd.SetArgs([]string{"/nope.toml"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if err := cmd.ExecuteContext(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("execute error = %v, want %v", err, boom)
	}
	if strings.Contains(out.String(), "Usage:") {
		t.Fatalf("usage printed for a runtime error: %q", out.String())
	}
}
