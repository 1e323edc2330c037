package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// downloadResponse mirrors the cartoondl API response. Error is set only
// when Status is false.
type downloadResponse struct {
	Status      bool   `json:"status"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Download    string `json:"download"`
	Error       string `json:"error"`
}

func main() {
	apiURL := strings.TrimRight(os.Getenv("CARTOONDL_API_URL"), "/")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("CARTOONDL_API_KEY")

	s := server.NewMCPServer(
		"cartoondl",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	downloadTool := mcp.NewTool("cartoon_download",
		mcp.WithDescription("Look up a cartoons.lk movie or episode page and return its title, description, poster image and download link."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Page URL, must start with https://cartoons.lk/"),
		),
	)
	s.AddTool(downloadTool, handleDownload(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleDownload(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 30 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pageURL, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		endpoint := apiURL + "/api/download?url=" + url.QueryEscape(pageURL)
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}
		if apiKey != "" {
			httpReq.Header.Set("X-API-Key", apiKey)
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}

		var dr downloadResponse
		if err := json.Unmarshal(body, &dr); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response (HTTP %d): %v", resp.StatusCode, err)), nil
		}
		if !dr.Status {
			return mcp.NewToolResultError(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, dr.Error)), nil
		}

		return mcp.NewToolResultText(formatResult(&dr)), nil
	}
}

func formatResult(dr *downloadResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", dr.Title)
	if dr.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", dr.Description)
	}
	if dr.Image != "" {
		fmt.Fprintf(&b, "Image: %s\n", dr.Image)
	}
	fmt.Fprintf(&b, "Download: %s\n", dr.Download)
	return b.String()
}
