package storage

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// MemCachedClient connects to the memcached holding creator projections.
// A cache miss costs one mongodb read, so lookups give up quickly.
func MemCachedClient(address string, port int) (*memcache.Client, error) {
	client := memcache.New(net.JoinHostPort(address, strconv.Itoa(port)))
	client.MaxIdleConns = 64
	client.Timeout = 200 * time.Millisecond
	if err := client.Ping(); err != nil {
		return nil, fmt.Errorf("memcached cannot be reached: %w", err)
	}
	return client, nil
}
