package transport

import (
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// authHeaders derives yt-dlp style SAPISID authorization headers from the
// cookie jar, when one is configured. An empty header set means the session
// is anonymous.
func authHeaders(client *http.Client, host string, now time.Time) http.Header {
	out := make(http.Header)
	cookies := cookiesForHost(client, host)
	if len(cookies) == 0 {
		return out
	}

	byName := make(map[string]string, len(cookies))
	for _, c := range cookies {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		byName[name] = c.Value
	}

	origin := "https://" + host
	authValues := make([]string, 0, 3)
	appendAuth := func(scheme, sid string) {
		sid = strings.TrimSpace(sid)
		if sid == "" {
			return
		}
		authValues = append(authValues, scheme+" "+sidHash(now.Unix(), sid, origin))
	}
	appendAuth("SAPISIDHASH", firstNonEmpty(byName["SAPISID"], byName["APISID"]))
	appendAuth("SAPISID1PHASH", byName["__Secure-1PAPISID"])
	appendAuth("SAPISID3PHASH", byName["__Secure-3PAPISID"])
	if len(authValues) > 0 {
		out.Set("Authorization", strings.Join(authValues, " "))
		out.Set("X-Origin", origin)
	}
	if strings.TrimSpace(byName["LOGIN_INFO"]) != "" {
		out.Set("X-Youtube-Bootstrap-Logged-In", "true")
	}
	return out
}

func sidHash(ts int64, sid, origin string) string {
	payload := strconv.FormatInt(ts, 10) + " " + sid + " " + origin
	sum := sha1.Sum([]byte(payload))
	return strconv.FormatInt(ts, 10) + "_" + hex.EncodeToString(sum[:])
}

func cookiesForHost(client *http.Client, host string) []*http.Cookie {
	if client == nil || client.Jar == nil {
		return nil
	}
	u := &url.URL{Scheme: "https", Host: host}
	return client.Jar.Cookies(u)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
