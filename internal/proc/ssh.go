package proc

import (
	"fmt"

	"github.com/kballard/go-shellquote"
)

// RemoteConfig describes a remote host an external session executes on.
type RemoteConfig struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	User     string `json:"user,omitempty"`
	Identity string `json:"identity,omitempty"`
}

// WrapRemote transforms a spawn config so the command executes on the remote
// host over ssh. Invoked only for targets that carry remote-execution
// configuration; purely local targets are never wrapped.
func WrapRemote(cfg SpawnConfig, remote RemoteConfig) SpawnConfig {
	wrapped := cfg
	wrapped.SSHHost = remote.Host
	wrapped.SSHUser = remote.User
	wrapped.SSHIdentity = remote.Identity
	wrapped.RemoteName = remote.Name

	dest := remote.Host
	if remote.User != "" {
		dest = remote.User + "@" + remote.Host
	}

	sshArgs := []string{"-T"}
	if remote.Identity != "" {
		sshArgs = append(sshArgs, "-i", remote.Identity)
	}
	sshArgs = append(sshArgs, dest)

	// The prompt must travel inside the quoted remote command. Left as a
	// trailing argv element it would be word-split and interpreted by the
	// remote shell.
	remoteCmd := append([]string{cfg.Command}, cfg.Args...)
	if cfg.Prompt != "" {
		remoteCmd = append(remoteCmd, cfg.Prompt)
	}
	if cfg.WorkDir != "" {
		sshArgs = append(sshArgs, fmt.Sprintf("cd %s && %s",
			shellquote.Join(cfg.WorkDir), shellquote.Join(remoteCmd...)))
	} else {
		sshArgs = append(sshArgs, shellquote.Join(remoteCmd...))
	}

	wrapped.Command = "ssh"
	wrapped.Args = sshArgs
	wrapped.WorkDir = ""
	wrapped.Prompt = ""
	return wrapped
}
