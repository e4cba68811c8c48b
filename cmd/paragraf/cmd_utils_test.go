// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAssistantBaseURL(t *testing.T) {
	t.Setenv("ASSISTANT_URL", "")
	assert.Equal(t, "http://localhost:12300", getAssistantBaseURL())

	t.Setenv("ASSISTANT_URL", "http://10.0.0.5:9999/")
	assert.Equal(t, "http://10.0.0.5:9999", getAssistantBaseURL())
}

func TestResolveUserID_FlagWins(t *testing.T) {
	userID = "mec-kowalska"
	defer func() { userID = "" }()
	assert.Equal(t, "mec-kowalska", resolveUserID())
}

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	var resp map[string]string
	require.NoError(t, getJSON(server.URL, &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestGetJSON_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	var resp map[string]string
	err := getJSON(server.URL, &resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestPostJSON_NoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	var resp map[string]string
	require.NoError(t, postJSON(server.URL, map[string]string{"a": "b"}, &resp))
	assert.Empty(t, resp)
}
