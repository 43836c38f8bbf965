// main package for the studio-client batch CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/book-expert/logger"
	"github.com/nats-io/nats.go"

	"github.com/book-expert/tts-studio/internal/archive"
	"github.com/book-expert/tts-studio/internal/keystore"
	"github.com/book-expert/tts-studio/internal/lines"
	"github.com/book-expert/tts-studio/internal/objectstore"
	"github.com/book-expert/tts-studio/internal/playback"
	"github.com/book-expert/tts-studio/internal/tts"
	"github.com/book-expert/tts-studio/internal/voices"
)

// Flag descriptions.
const (
	flagInputDesc   = "Text file to convert, one line per clip"
	flagVoiceDesc   = "Voice ID to synthesize with"
	flagURLDesc     = "Base URL of the tts-studio boundary server"
	flagOutputDesc  = "Directory to write generated clips into"
	flagKeyDesc     = "Provider API key (defaults to the TTS_STUDIO_API_KEY environment variable)"
	flagDelayDesc   = "Delay between consecutive requests, in milliseconds"
	flagArchiveDesc = "Also write a dated zip archive of the generated clips"
	flagPublishDesc = "Publish the archive to the NATS object store bucket"
	flagNATSDesc    = "NATS server URL for archive publishing"
	flagBucketDesc  = "NATS object store bucket for archive publishing"
	flagVoicesDesc  = "List available voices and exit"
	flagVerboseDesc = "Enable verbose logging"
)

// Flag names.
const (
	flagInput   = "input"
	flagVoice   = "voice"
	flagURL     = "url"
	flagOutput  = "output"
	flagKey     = "key"
	flagDelay   = "delay"
	flagArchive = "archive"
	flagPublish = "publish"
	flagNATS    = "nats"
	flagBucket  = "bucket"
	flagVoices  = "voices"
	flagVerbose = "verbose"
)

// Error and log messages.
const (
	errInputRequired      = "--input is required"
	errVoiceRequired      = "--voice is required"
	errFailedToInitLogger = "Failed to initialize logger: %v"
	errFailedToReadInput  = "Failed to read input file: %v"
	errNoLinesInInput     = "Input file contains no non-empty lines"
	errFailedToListVoices = "Failed to list voices: %v"
	errBatchFailed        = "Batch run failed: %v"
	errFailedToWriteClip  = "Failed to write clip: %v"
	errFailedToArchive    = "Failed to build archive: %v"
	errFailedToPublish    = "Failed to publish archive: %v"

	logClientInitialized = "Studio client initialized (server: %s)"
	logLoadedLines       = "Loaded %d lines from %s"
	logWroteClip         = "Wrote %s"
	logWroteArchive      = "Wrote archive %s"
	logPublishedArchive  = "Published archive %s to bucket %s"
	logGeneratedSummary  = "Generated %d of %d clips in %s\n"
)

// Defaults and file names.
const (
	defaultServerURL   = "http://localhost:8080"
	defaultDelayMS     = 500
	defaultNATSBucket  = "TTS_ARCHIVES"
	apiKeyEnvVar       = "TTS_STUDIO_API_KEY"
	requestTimeout     = 60 * time.Second
	natsConnectTimeout = 5 * time.Second

	logFileNameDefault = "studio-client.log"
	logFileNameVerbose = "studio-client-verbose.log"
)

// appFlags holds the parsed command-line flag values.
type appFlags struct {
	input      string
	voice      string
	url        string
	output     string
	key        string
	delayMS    int
	archive    bool
	publish    bool
	natsURL    string
	natsBucket string
	listVoices bool
	verbose    bool
}

func main() {
	err := run()
	if err != nil {
		// A logger might not be initialized yet, so use the standard log package.
		log.Fatalf("Error: %v", err)
	}
}

// run is the main application entry point, returning an error on failure.
func run() error {
	flags := parseFlags()

	logFile := logFileNameDefault
	if flags.verbose {
		logFile = logFileNameVerbose
	}

	appLog, err := logger.New(os.TempDir(), logFile)
	if err != nil {
		return fmt.Errorf(errFailedToInitLogger, err)
	}
	defer appLog.Close()

	appLog.Info(logClientInitialized, flags.url)

	client := tts.NewHTTPClient(flags.url, requestTimeout)
	keys := resolveKeys(flags.key)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if flags.listVoices {
		return printVoices(ctx, client, keys)
	}

	return runBatch(ctx, client, keys, appLog, flags)
}

// parseFlags defines and parses command-line flags, returning them in a struct.
func parseFlags() appFlags {
	var flags appFlags
	flag.StringVar(&flags.input, flagInput, "", flagInputDesc)
	flag.StringVar(&flags.voice, flagVoice, "", flagVoiceDesc)
	flag.StringVar(&flags.url, flagURL, defaultServerURL, flagURLDesc)
	flag.StringVar(&flags.output, flagOutput, ".", flagOutputDesc)
	flag.StringVar(&flags.key, flagKey, "", flagKeyDesc)
	flag.IntVar(&flags.delayMS, flagDelay, defaultDelayMS, flagDelayDesc)
	flag.BoolVar(&flags.archive, flagArchive, false, flagArchiveDesc)
	flag.BoolVar(&flags.publish, flagPublish, false, flagPublishDesc)
	flag.StringVar(&flags.natsURL, flagNATS, nats.DefaultURL, flagNATSDesc)
	flag.StringVar(&flags.natsBucket, flagBucket, defaultNATSBucket, flagBucketDesc)
	flag.BoolVar(&flags.listVoices, flagVoices, false, flagVoicesDesc)
	flag.BoolVar(&flags.verbose, flagVerbose, false, flagVerboseDesc)
	flag.Parse()

	return flags
}

// resolveKeys builds the key manager from the -key flag or the environment.
// A missing or malformed key is tolerated; the boundary server then falls
// back to its own server-held key.
func resolveKeys(flagKey string) *keystore.Manager {
	manager := keystore.New(keystore.NewMemoryStore())

	apiKey := flagKey
	if apiKey == "" {
		apiKey = os.Getenv(apiKeyEnvVar)
	}

	if apiKey != "" {
		_ = manager.Store(apiKey)
	}

	return manager
}

// printVoices fetches the voice list from the boundary server and prints it.
func printVoices(ctx context.Context, client *tts.HTTPClient, keys *keystore.Manager) error {
	list, err := client.ListVoices(ctx, keys.EffectiveKey())
	if err != nil {
		return fmt.Errorf(errFailedToListVoices, err)
	}

	for _, voice := range list {
		fmt.Printf("%s\t%s\n", voice.VoiceID, voices.FormatName(voice))
	}

	return nil
}

// runBatch loads the input file, generates every line through the boundary
// server, and writes the resulting clips and optional archive.
func runBatch(
	ctx context.Context,
	client *tts.HTTPClient,
	keys *keystore.Manager,
	appLog *logger.Logger,
	flags appFlags,
) error {
	if flags.input == "" {
		flag.Usage()

		return errors.New(errInputRequired)
	}

	if flags.voice == "" {
		return errors.New(errVoiceRequired)
	}

	store, err := loadLines(flags.input, appLog)
	if err != nil {
		return err
	}

	generator := tts.NewGenerator(client, keys)
	pacer := tts.NewFixedPacer(time.Duration(flags.delayMS) * time.Millisecond)
	engine := tts.NewBatchEngine(generator, pacer, appLog)

	err = engine.Run(ctx, store.Snapshot(), flags.voice, trackProgress(store))
	if err != nil {
		return fmt.Errorf(errBatchFailed, err)
	}

	return writeResults(ctx, store, appLog, flags)
}

// loadLines reads the input file and splits it into a fresh line store.
func loadLines(inputPath string, appLog *logger.Logger) (*lines.Store, error) {
	text, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf(errFailedToReadInput, err)
	}

	store := lines.NewStore(playback.NewArena(playback.NewFileBackend(os.TempDir())))

	loaded, err := store.Load(string(text))
	if err != nil {
		return nil, fmt.Errorf(errFailedToReadInput, err)
	}

	if len(loaded) == 0 {
		return nil, errors.New(errNoLinesInInput)
	}

	appLog.Info(logLoadedLines, len(loaded), inputPath)

	return store, nil
}

// trackProgress mirrors batch progress into the line store.
func trackProgress(store *lines.Store) tts.ProgressFunc {
	return func(lineID string, status lines.Status, result *tts.Result) {
		switch status {
		case lines.StatusProcessing:
			_ = store.BeginProcessing(lineID)
		case lines.StatusReady:
			_ = store.CompleteSuccess(lineID, result.Audio)
		case lines.StatusError:
			_ = store.CompleteError(lineID, result.Err)
		case lines.StatusIdle, lines.StatusStale:
		}
	}
}

// writeResults writes every generated clip to the output directory, then the
// optional archive, then publishes the archive when asked to.
func writeResults(
	ctx context.Context,
	store *lines.Store,
	appLog *logger.Logger,
	flags appFlags,
) error {
	ready := store.WithAudio()
	total := len(store.Snapshot())

	for i, line := range ready {
		clipPath := filepath.Join(flags.output, archive.ClipName(i))

		err := os.WriteFile(clipPath, line.Audio, 0o600)
		if err != nil {
			return fmt.Errorf(errFailedToWriteClip, err)
		}

		appLog.Info(logWroteClip, clipPath)
	}

	if flags.archive || flags.publish {
		err := writeArchive(ctx, ready, appLog, flags)
		if err != nil {
			return err
		}
	}

	fmt.Printf(logGeneratedSummary, len(ready), total, flags.output)

	return nil
}

// writeArchive builds the dated zip and writes or publishes it.
func writeArchive(
	ctx context.Context,
	ready []lines.Line,
	appLog *logger.Logger,
	flags appFlags,
) error {
	data, err := archive.Build(ready)
	if err != nil {
		return fmt.Errorf(errFailedToArchive, err)
	}

	name := archive.Name(time.Now())

	if flags.archive {
		archivePath := filepath.Join(flags.output, name)

		err = os.WriteFile(archivePath, data, 0o600)
		if err != nil {
			return fmt.Errorf(errFailedToArchive, err)
		}

		appLog.Info(logWroteArchive, archivePath)
	}

	if flags.publish {
		err = publishArchive(ctx, name, data, flags)
		if err != nil {
			return fmt.Errorf(errFailedToPublish, err)
		}

		appLog.Info(logPublishedArchive, name, flags.natsBucket)
	}

	return nil
}

// publishArchive uploads the archive to the NATS object store bucket.
func publishArchive(ctx context.Context, name string, data []byte, flags appFlags) error {
	conn, err := nats.Connect(flags.natsURL, nats.Timeout(natsConnectTimeout))
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", flags.natsURL, err)
	}
	defer conn.Close()

	jetstreamContext, err := conn.JetStream()
	if err != nil {
		return fmt.Errorf("failed to open JetStream context: %w", err)
	}

	store, err := objectstore.New(jetstreamContext, flags.natsBucket)
	if err != nil {
		return err
	}

	return store.Upload(ctx, name, data)
}
