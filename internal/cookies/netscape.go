package cookies

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Browser exports prefix HttpOnly cookie lines with a pseudo-comment.
const httpOnlyPrefix = "#HttpOnly_"

// Parse reads a Netscape cookies.txt export: tab-separated lines of
// domain, include-subdomains flag, path, secure flag, expiry, name, value.
// Comments, blank lines, and short lines are skipped.
func Parse(r io.Reader) ([]*http.Cookie, error) {
	var out []*http.Cookie
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		httpOnly := strings.HasPrefix(line, httpOnlyPrefix)
		if httpOnly {
			line = strings.TrimPrefix(line, httpOnlyPrefix)
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 7 {
			continue
		}
		c := &http.Cookie{
			Domain:   fields[0],
			Path:     fields[2],
			Secure:   strings.EqualFold(fields[3], "TRUE"),
			Name:     fields[5],
			Value:    fields[6],
			HttpOnly: httpOnly,
		}
		// Expiry 0 marks a session cookie; a zero Expires keeps it alive
		// in the jar.
		if expires, _ := strconv.ParseInt(fields[4], 10, 64); expires > 0 {
			c.Expires = time.Unix(expires, 0)
		}
		out = append(out, c)
	}
	return out, scanner.Err()
}

// LoadJar reads a Netscape cookie file into a fresh jar, registering each
// cookie under its own domain.
func LoadJar(path string) (http.CookieJar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	parsed, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	byHost := make(map[string][]*http.Cookie)
	for _, c := range parsed {
		host := strings.TrimPrefix(c.Domain, ".")
		byHost[host] = append(byHost[host], c)
	}
	for host, group := range byHost {
		jar.SetCookies(&url.URL{Scheme: "https", Host: host}, group)
	}
	return jar, nil
}
