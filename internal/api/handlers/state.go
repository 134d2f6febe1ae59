package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rohits-web03/notevault/internal/utils"
)

const oauthStateCookie = "oauth_state"

// oauthState travels through Google as the OAuth state parameter, in the
// form "nonce.payload". The nonce is also kept in a cookie and compared on
// the callback.
type oauthState struct {
	Nonce string `json:"-"`
	Next  string `json:"next,omitempty"`
}

func newOAuthState(next string) (string, oauthState, error) {
	nonce, err := utils.GenerateSecureToken(16)
	if err != nil {
		return "", oauthState{}, fmt.Errorf("failed to generate state nonce: %w", err)
	}
	st := oauthState{Nonce: nonce, Next: next}

	payload, err := json.Marshal(st)
	if err != nil {
		return "", oauthState{}, fmt.Errorf("failed to marshal state data: %w", err)
	}
	return nonce + "." + base64.RawURLEncoding.EncodeToString(payload), st, nil
}

func decodeOAuthState(state string) (oauthState, error) {
	nonce, payloadPart, ok := strings.Cut(state, ".")
	if !ok || nonce == "" {
		return oauthState{}, fmt.Errorf("invalid state format")
	}

	payload, err := base64.RawURLEncoding.DecodeString(payloadPart)
	if err != nil {
		return oauthState{}, fmt.Errorf("failed to decode state payload: %w", err)
	}

	var st oauthState
	if err := json.Unmarshal(payload, &st); err != nil {
		return oauthState{}, fmt.Errorf("failed to unmarshal state JSON: %w", err)
	}
	st.Nonce = nonce
	st.Next = safeNext(st.Next)
	return st, nil
}
