package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/cellex-webapp/cellex-storefront/pkg/config"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// ServiceDiscovery resolves backend endpoints from etcd and registers the
// storefront itself so peers can find it. The gateway treats etcd as
// best-effort: resolution failures fall back to configured base URLs.
type ServiceDiscovery struct {
	client *clientv3.Client
	config *config.EtcdConfig
}

type ServiceInstance struct {
	Name string
	Host string
	Port int
}

func NewServiceDiscovery(cfg *config.EtcdConfig) (*ServiceDiscovery, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}

	return &ServiceDiscovery{
		client: cli,
		config: cfg,
	}, nil
}

// Register announces the storefront under a leased key with keep-alive, so
// the entry disappears when the process dies.
func (sd *ServiceDiscovery) Register(ctx context.Context, instance *ServiceInstance) error {
	key := fmt.Sprintf("%s%s/%s:%d", sd.config.Prefix, instance.Name, instance.Host, instance.Port)
	value := fmt.Sprintf("%s:%d", instance.Host, instance.Port)

	lease, err := sd.client.Grant(ctx, 30)
	if err != nil {
		return fmt.Errorf("failed to create lease: %w", err)
	}

	_, err = sd.client.Put(ctx, key, value, clientv3.WithLease(lease.ID))
	if err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}

	ch, kaerr := sd.client.KeepAlive(ctx, lease.ID)
	if kaerr != nil {
		return fmt.Errorf("failed to keep alive: %w", kaerr)
	}

	go func() {
		for ka := range ch {
			_ = ka
		}
	}()

	return nil
}

// ResolveBaseURL looks up the first registered instance of a service and
// returns it as an HTTP base URL. Returns an error when nothing is
// registered; callers are expected to fall back to configuration.
func (sd *ServiceDiscovery) ResolveBaseURL(ctx context.Context, serviceName string) (string, error) {
	key := fmt.Sprintf("%s%s/", sd.config.Prefix, serviceName)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	resp, err := sd.client.Get(ctx, key, clientv3.WithPrefix())
	if err != nil {
		return "", fmt.Errorf("failed to discover service %s: %w", serviceName, err)
	}
	if len(resp.Kvs) == 0 {
		return "", fmt.Errorf("no instances registered for service %s", serviceName)
	}

	return "http://" + string(resp.Kvs[0].Value), nil
}

func (sd *ServiceDiscovery) Deregister(ctx context.Context, instance *ServiceInstance) error {
	key := fmt.Sprintf("%s%s/%s:%d", sd.config.Prefix, instance.Name, instance.Host, instance.Port)
	_, err := sd.client.Delete(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to deregister service: %w", err)
	}
	return nil
}

func (sd *ServiceDiscovery) Close() error {
	return sd.client.Close()
}
