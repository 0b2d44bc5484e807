package sandbox

import (
	"context"
	"sync"

	"github.com/docker/docker/client"
)

// knownRuntimeHosts maps a container-runtime name (as configured via
// cfg.Config.ContainerRuntimePrimary/Alternate) to the Docker-API-compatible
// endpoint the SDK client should dial. "docker" leaves the host unset so
// client.FromEnv resolves the platform default socket; "podman" points at
// Podman's Docker-compatible API socket. A name outside this table can
// never be probed.
var knownRuntimeHosts = map[string]string{
	"docker": "",
	"podman": "unix:///run/podman/podman.sock",
}

// dockerClientResolver probes the configured container runtimes once per
// process and caches whichever one answers first, per spec: runtime choice
// is stable once made.
type dockerClientResolver struct {
	primary   string
	alternate string

	once   sync.Once
	client *client.Client
	err    error
}

func newDockerClientResolver(primary, alternate string) *dockerClientResolver {
	return &dockerClientResolver{primary: primary, alternate: alternate}
}

func (r *dockerClientResolver) resolve(ctx context.Context) (*client.Client, error) {
	r.once.Do(func() {
		if cli, ok := r.tryHost(ctx, r.primary); ok {
			r.client = cli
			return
		}
		if cli, ok := r.tryHost(ctx, r.alternate); ok {
			r.client = cli
			return
		}
		r.err = &ErrRuntimeUnavailable{Primary: r.primary, Alternate: r.alternate}
	})

	return r.client, r.err
}

func (r *dockerClientResolver) tryHost(ctx context.Context, name string) (*client.Client, bool) {
	host, known := knownRuntimeHosts[name]
	if !known {
		return nil, false
	}

	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, false
	}

	if _, err := cli.Ping(ctx); err != nil {
		cli.Close()
		return nil, false
	}

	return cli, true
}

// close releases the resolved client, a no-op if resolve was never called
// or never succeeded.
func (r *dockerClientResolver) close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
