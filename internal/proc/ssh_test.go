package proc

import (
	"reflect"
	"testing"
)

func TestWrapRemote(t *testing.T) {
	cfg := SpawnConfig{
		SessionID: "groupchat-1-worker",
		Command:   "claude",
		Args:      []string{"--print", "--output-format", "stream-json"},
		WorkDir:   "/srv/project dir",
	}
	remote := RemoteConfig{
		Name:     "buildbox",
		Host:     "build.example.com",
		User:     "ops",
		Identity: "/home/ops/.ssh/id_ed25519",
	}

	wrapped := WrapRemote(cfg, remote)

	if wrapped.Command != "ssh" {
		t.Errorf("Command = %q, want ssh", wrapped.Command)
	}
	if wrapped.WorkDir != "" {
		t.Errorf("WorkDir = %q, want empty (cd happens remotely)", wrapped.WorkDir)
	}
	want := []string{
		"-T",
		"-i", "/home/ops/.ssh/id_ed25519",
		"ops@build.example.com",
		`cd '/srv/project dir' && claude --print --output-format stream-json`,
	}
	if !reflect.DeepEqual(wrapped.Args, want) {
		t.Errorf("Args = %v\nwant %v", wrapped.Args, want)
	}
	if wrapped.SessionID != cfg.SessionID {
		t.Errorf("SessionID changed to %q", wrapped.SessionID)
	}
}

func TestWrapRemoteNoUserNoWorkDir(t *testing.T) {
	wrapped := WrapRemote(SpawnConfig{Command: "codex", Args: []string{"exec"}}, RemoteConfig{Host: "h1"})

	want := []string{"-T", "h1", "codex exec"}
	if !reflect.DeepEqual(wrapped.Args, want) {
		t.Errorf("Args = %v, want %v", wrapped.Args, want)
	}
}

func TestWrapRemoteFoldsPromptIntoCommand(t *testing.T) {
	cfg := SpawnConfig{
		Command: "claude",
		Args:    []string{"--print"},
		Prompt:  "hello world; rm -rf $HOME",
	}

	wrapped := WrapRemote(cfg, RemoteConfig{Host: "h1"})

	if wrapped.Prompt != "" {
		t.Errorf("Prompt = %q, want empty (carried inside the remote command)", wrapped.Prompt)
	}
	want := []string{"-T", "h1", `claude --print 'hello world; rm -rf $HOME'`}
	if !reflect.DeepEqual(wrapped.Args, want) {
		t.Errorf("Args = %v\nwant %v", wrapped.Args, want)
	}
}

func TestWrapRemotePromptWithWorkDir(t *testing.T) {
	cfg := SpawnConfig{
		Command: "codex",
		Args:    []string{"exec", "--json"},
		WorkDir: "/srv/app",
		Prompt:  "summarize `uname -a` output",
	}

	wrapped := WrapRemote(cfg, RemoteConfig{Host: "h1", User: "ops"})

	if len(wrapped.Args) != 3 {
		t.Fatalf("Args = %v, want 3 elements", wrapped.Args)
	}
	got := wrapped.Args[2]
	if got != `cd /srv/app && codex exec --json 'summarize `+"`uname -a`"+` output'` {
		t.Errorf("remote command = %q", got)
	}
}
