// Command menuhound-mcp is an MCP stdio server exposing the menuhound HTTP
// API as tools, so assistants can ask "what's for lunch at <site>" directly.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// scrapeRequest mirrors the menuhound API request model.
type scrapeRequest struct {
	Site  string `json:"site,omitempty"`
	URL   string `json:"url,omitempty"`
	Fresh bool   `json:"fresh,omitempty"`
}

// scrapeResponse mirrors the menuhound API response model.
type scrapeResponse struct {
	Success bool `json:"success"`
	Result  *struct {
		Site  string `json:"site"`
		URL   string `json:"url"`
		Items []struct {
			Name        string `json:"name"`
			Price       string `json:"price"`
			Category    string `json:"category"`
			Description string `json:"description"`
		} `json:"items"`
		Error     string `json:"error"`
		ScrapedAt string `json:"scraped_at"`
	} `json:"result"`
	Cache string `json:"cache"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// sitesResponse mirrors GET /api/v1/sites.
type sitesResponse struct {
	Sites []struct {
		Name    string `json:"name"`
		URL     string `json:"url"`
		Enabled bool   `json:"enabled"`
	} `json:"sites"`
}

func main() {
	apiURL := os.Getenv("MENUHOUND_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("MENUHOUND_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "MENUHOUND_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"menuhound",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	scrapeMenuTool := mcp.NewTool("scrape_menu",
		mcp.WithDescription("Extract today's lunch menu from a restaurant website. Returns the menu items with names, prices and categories. Pass either a configured site name or a raw URL."),
		mcp.WithString("site",
			mcp.Description("Name of a configured site (see list_sites)"),
		),
		mcp.WithString("url",
			mcp.Description("URL of an unconfigured restaurant website to scrape ad hoc"),
		),
		mcp.WithBoolean("fresh",
			mcp.Description("Bypass the result cache and force a new browser run"),
		),
	)
	s.AddTool(scrapeMenuTool, handleScrapeMenu(apiURL, apiKey))

	listSitesTool := mcp.NewTool("list_sites",
		mcp.WithDescription("List the restaurant sites configured on the menuhound server."),
	)
	s.AddTool(listSitesTool, handleListSites(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleScrapeMenu(apiURL, apiKey string) server.ToolHandlerFunc {
	// A scrape is a full browser run including challenge waits, so the
	// client timeout is generous.
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		site := request.GetString("site", "")
		url := request.GetString("url", "")
		if site == "" && url == "" {
			return mcp.NewToolResultError("site or url is required"), nil
		}

		reqBody := scrapeRequest{
			Site:  site,
			URL:   url,
			Fresh: request.GetBool("fresh", false),
		}

		body, err := json.Marshal(reqBody)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal request: %v", err)), nil
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/api/v1/scrape", bytes.NewReader(body))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("X-API-Key", apiKey)

		resp, err := client.Do(httpReq)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}

		var scrapeResp scrapeResponse
		if err := json.Unmarshal(respBody, &scrapeResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if scrapeResp.Error != nil {
			return mcp.NewToolResultError(fmt.Sprintf("[%s] %s", scrapeResp.Error.Code, scrapeResp.Error.Message)), nil
		}
		if scrapeResp.Result == nil {
			return mcp.NewToolResultError("empty result from API"), nil
		}

		return mcp.NewToolResultText(formatMenu(&scrapeResp)), nil
	}
}

func handleListSites(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 30 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"/api/v1/sites", nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}
		httpReq.Header.Set("X-API-Key", apiKey)

		resp, err := client.Do(httpReq)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}

		var sites sitesResponse
		if err := json.Unmarshal(respBody, &sites); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("%d configured sites:\n\n", len(sites.Sites)))
		for _, s := range sites.Sites {
			state := "enabled"
			if !s.Enabled {
				state = "disabled"
			}
			sb.WriteString(fmt.Sprintf("- %s (%s) %s\n", s.Name, state, s.URL))
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// formatMenu renders one site result as readable text for the assistant.
func formatMenu(resp *scrapeResponse) string {
	r := resp.Result

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Menu for %s (%s)\n", r.Site, r.URL))
	if resp.Cache == "hit" {
		sb.WriteString("(cached result)\n")
	}
	if !resp.Success {
		sb.WriteString(fmt.Sprintf("Run failed: %s\n", r.Error))
		return sb.String()
	}
	if len(r.Items) == 0 {
		sb.WriteString("No menu available today.\n")
		return sb.String()
	}

	category := ""
	for _, item := range r.Items {
		if item.Category != category {
			category = item.Category
			sb.WriteString(fmt.Sprintf("\n## %s\n", category))
		}
		sb.WriteString(fmt.Sprintf("- %s: %s", item.Name, item.Price))
		if item.Description != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", item.Description))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
