// Command voice-client drives the voice-generator HTTP API from the terminal:
// upload a voice sample, generate speech, and inspect history and status.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Flag descriptions.
const (
	flagTextDesc    = "Text to convert to speech"
	flagVoiceDesc   = "Path to a voice sample to upload and clone"
	flagOutputDesc  = "Output file path (.wav)"
	flagServerDesc  = "Base URL of the voice-generator service"
	flagStatusDesc  = "Print engine status and exit"
	flagHistoryDesc = "Print recent generations and exit"
)

// Flag names.
const (
	flagText    = "text"
	flagVoice   = "voice"
	flagOutput  = "output"
	flagServer  = "server"
	flagStatus  = "status"
	flagHistory = "history"
)

// Error and output messages.
const (
	errTextRequired      = "--text is required unless --status or --history is set"
	errFailedUpload      = "failed to upload voice sample: %w"
	errFailedGenerate    = "failed to generate speech: %w"
	errFailedDownload    = "failed to download audio: %w"
	errFailedStatus      = "failed to fetch status: %w"
	errFailedHistory     = "failed to fetch history: %w"
	errUnexpectedStatus  = "unexpected status %d: %s"
	logGenerated         = "Generated: %s\n"
	logUploadedVoice     = "Uploaded voice sample: %s\n"
	defaultServerURL     = "http://localhost:8000"
	defaultOutputFile    = "output.wav"
	outputFilePermission = 0o600
	requestTimeout       = 5 * time.Minute
)

// appFlags holds the parsed command-line flag values.
type appFlags struct {
	text    string
	voice   string
	output  string
	server  string
	status  bool
	history bool
}

func main() {
	err := run()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	flags := parseFlags()

	err := validateArgumentsOnly(flags)
	if err != nil {
		flag.Usage()

		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	client := &apiClient{
		baseURL: strings.TrimRight(flags.server, "/"),
		httpc:   &http.Client{Timeout: requestTimeout},
	}

	if flags.status {
		return client.printStatus(ctx)
	}

	if flags.history {
		return client.printHistory(ctx)
	}

	return client.generate(ctx, flags)
}

// parseFlags defines and parses command-line flags, returning them in a struct.
func parseFlags() appFlags {
	var flags appFlags

	flag.StringVar(&flags.text, flagText, "", flagTextDesc)
	flag.StringVar(&flags.voice, flagVoice, "", flagVoiceDesc)
	flag.StringVar(&flags.output, flagOutput, "", flagOutputDesc)
	flag.StringVar(&flags.server, flagServer, defaultServerURL, flagServerDesc)
	flag.BoolVar(&flags.status, flagStatus, false, flagStatusDesc)
	flag.BoolVar(&flags.history, flagHistory, false, flagHistoryDesc)
	flag.Parse()

	return flags
}

// validateArgumentsOnly checks flag combinations without touching the network.
func validateArgumentsOnly(flags appFlags) error {
	if flags.text == "" && !flags.status && !flags.history {
		return errors.New(errTextRequired)
	}

	return nil
}

// apiClient is a thin wrapper over the service's HTTP endpoints.
type apiClient struct {
	baseURL string
	httpc   *http.Client
}

// generate optionally uploads a voice sample, then requests one synthesis and
// saves the resulting WAV locally.
func (c *apiClient) generate(ctx context.Context, flags appFlags) error {
	voiceID := ""

	if flags.voice != "" {
		uploaded, err := c.uploadVoice(ctx, flags.voice)
		if err != nil {
			return fmt.Errorf(errFailedUpload, err)
		}

		fmt.Printf(logUploadedVoice, uploaded.VoiceID)

		voiceID = uploaded.VoiceID
	}

	form := url.Values{"text": {flags.text}}
	if voiceID != "" {
		form.Set("voice_id", voiceID)
	}

	var generated struct {
		ID          string `json:"id"`
		Filename    string `json:"filename"`
		DownloadURL string `json:"download_url"`
	}

	err := c.postForm(ctx, "/generate", form, &generated)
	if err != nil {
		return fmt.Errorf(errFailedGenerate, err)
	}

	outputPath := flags.output
	if outputPath == "" {
		outputPath = defaultOutputFile
	}

	err = c.download(ctx, generated.DownloadURL, outputPath)
	if err != nil {
		return fmt.Errorf(errFailedDownload, err)
	}

	fmt.Printf(logGenerated, outputPath)

	return nil
}

type uploadResult struct {
	VoiceID  string `json:"voice_id"`
	Filename string `json:"filename"`
}

func (c *apiClient) uploadVoice(ctx context.Context, path string) (*uploadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read voice sample: %w", err)
	}

	var body bytes.Buffer

	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart form: %w", err)
	}

	_, err = part.Write(data)
	if err != nil {
		return nil, fmt.Errorf("failed to write multipart body: %w", err)
	}

	err = writer.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-voice", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())

	var uploaded uploadResult

	err = c.do(req, &uploaded)
	if err != nil {
		return nil, err
	}

	return &uploaded, nil
}

func (c *apiClient) printStatus(ctx context.Context) error {
	var status json.RawMessage

	err := c.get(ctx, "/status", &status)
	if err != nil {
		return fmt.Errorf(errFailedStatus, err)
	}

	fmt.Println(string(status))

	return nil
}

func (c *apiClient) printHistory(ctx context.Context) error {
	var history struct {
		Items []struct {
			Filename    string `json:"filename"`
			TextPreview string `json:"text_preview"`
			Timestamp   string `json:"timestamp"`
		} `json:"items"`
	}

	err := c.get(ctx, "/history", &history)
	if err != nil {
		return fmt.Errorf(errFailedHistory, err)
	}

	for _, item := range history.Items {
		fmt.Printf("%s  %s  %s\n", item.Timestamp, item.Filename, item.TextPreview)
	}

	return nil
}

func (c *apiClient) download(ctx context.Context, downloadURL, outputPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+downloadURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read audio body: %w", err)
	}

	err = os.WriteFile(outputPath, audio, outputFilePermission)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	return nil
}

func (c *apiClient) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.do(req, v)
}

func (c *apiClient) postForm(ctx context.Context, path string, form url.Values, v any) error {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+path,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req, v)
}

func (c *apiClient) do(req *http.Request, v any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}

	err = json.NewDecoder(resp.Body).Decode(v)
	if err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// readAPIError surfaces the service's JSON detail message when present.
func readAPIError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read error body: %w", err)
	}

	var apiErr struct {
		Detail string `json:"detail"`
	}

	if json.Unmarshal(body, &apiErr) == nil && apiErr.Detail != "" {
		return fmt.Errorf(errUnexpectedStatus, resp.StatusCode, apiErr.Detail)
	}

	return fmt.Errorf(errUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(body)))
}
