// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It wraps body decoding and identity lookup so handlers share the same error
behavior for malformed payloads and anonymous callers.
*/
package requestutil

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/taibuivan/nullship/internal/platform/apperr"
	"github.com/taibuivan/nullship/internal/platform/constants"
	"github.com/taibuivan/nullship/internal/platform/ctxutil"
	"github.com/taibuivan/nullship/internal/platform/sec"
	"github.com/taibuivan/nullship/internal/platform/validate"
)

// maxBodyBytes bounds every JSON body this API accepts.
const maxBodyBytes = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	if request.Body == nil {
		return validate.ErrInvalidJSON
	}
	decoder := json.NewDecoder(http.MaxBytesReader(nil, request.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
ClientIP returns the caller address, honoring X-Real-IP and then the first
X-Forwarded-For hop before falling back to the connection address.
*/
func ClientIP(request *http.Request) string {
	if ip := strings.TrimSpace(request.Header.Get(constants.HeaderXRealIP)); ip != "" {
		return ip
	}

	if forwarded := request.Header.Get(constants.HeaderXForwardedFor); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return host
}

/*
RequiredSession ensures the request is authenticated and returns its claims.

Returns:
  - *sec.SessionClaims: The verified claim bundle
  - error: apperr.Unauthorized if the request is anonymous
*/
func RequiredSession(request *http.Request) (*sec.SessionClaims, error) {
	claims := ctxutil.GetSession(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Access denied, No token provided.")
	}
	return claims, nil
}
