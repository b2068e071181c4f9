package utils

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"time"

	"github.com/mpapenbr/race-strategy-sim/log"
)

// WaitForTCP polls addr until a connection succeeds, ctx is done or timeout expires.
func WaitForTCP(ctx context.Context, addr string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	start := time.Now()
	log.Debug("wait for tcp connection",
		log.String("addr", addr),
		log.Duration("timeout", timeout))
	var d net.Dialer
	for {
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err == nil {
			conn.Close()
			log.Debug("tcp connection successful",
				log.String("addr", addr),
				log.Duration("duration", time.Since(start)))
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s could not be reached after %v", addr, timeout)
		case <-time.After(200 * time.Millisecond):
		}
	}
}

// WaitForHTTPResponse polls url until any response arrives.
func WaitForHTTPResponse(ctx context.Context, url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	cli := &http.Client{}
	for {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		if resp, err := cli.Do(req); err == nil {
			resp.Body.Close()
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s could not be reached after %v", url, timeout)
		case <-time.After(500 * time.Millisecond):
		}
	}
}

// ExtractFromDBURL returns host:port of a postgres connection url.
func ExtractFromDBURL(url string) string {
	return extractAddr(
		"^postgres(ql)?://(.*@)?(?P<addr>(?P<host>[^/:?]*)(:(?P<port>\\d+))?)(/.*)?$",
		url, "5432")
}

// ExtractFromNatsURL returns host:port of a nats url.
func ExtractFromNatsURL(url string) string {
	return extractAddr(
		"^(nats|tls)://(.*@)?(?P<addr>(?P<host>[^/:?]*)(:(?P<port>\\d+))?)/?$",
		url, "4222")
}

func extractAddr(regEx, url, defaultPort string) string {
	param := resolveRegex(regEx, url)
	if len(param) == 0 || param["host"] == "" {
		return ""
	}
	if port := param["port"]; port != "" {
		return param["addr"]
	}
	return fmt.Sprintf("%s:%s", param["host"], defaultPort)
}

func resolveRegex(regEx, url string) (paramsMap map[string]string) {
	compRegEx := regexp.MustCompile(regEx)
	match := compRegEx.FindStringSubmatch(url)

	paramsMap = make(map[string]string)
	if match == nil {
		return paramsMap
	}
	for i, name := range compRegEx.SubexpNames() {
		if i > 0 && name != "" && i < len(match) {
			paramsMap[name] = match[i]
		}
	}
	return paramsMap
}
