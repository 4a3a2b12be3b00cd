// Package session orchestrates the assistant pipeline: utterance in,
// classify, dispatch, record, optionally speak. The Pipeline handles one
// utterance end to end; the Controller runs live voice sessions on top of it.
package session

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/josemri/plyr-voice/internal/conversation"
	"github.com/josemri/plyr-voice/internal/dispatch"
	"github.com/josemri/plyr-voice/internal/intent"
	"github.com/josemri/plyr-voice/internal/message"
	"github.com/josemri/plyr-voice/internal/speech"
)

// Pipeline runs utterances through classify → dispatch, recording both sides
// of the exchange in the conversation log.
//
// Ordering is fixed: the user message is appended before classification,
// classification precedes dispatch, and the assistant message is appended
// before any speech output. Cancellation is observed through ctx between
// stages — a cancelled run appends nothing further and never reaches the
// dispatcher.
type Pipeline struct {
	classifier  *intent.Classifier
	dispatcher  *dispatch.Dispatcher
	log         *conversation.Log
	transcriber *speech.Transcriber // nil when no transcription backend is configured
	output      speech.OutputService
	locale      string
}

// NewPipeline wires the pipeline. transcriber and output may be nil.
func NewPipeline(
	classifier *intent.Classifier,
	dispatcher *dispatch.Dispatcher,
	log *conversation.Log,
	transcriber *speech.Transcriber,
	output speech.OutputService,
	locale string,
) *Pipeline {
	return &Pipeline{
		classifier:  classifier,
		dispatcher:  dispatcher,
		log:         log,
		transcriber: transcriber,
		output:      output,
		locale:      locale,
	}
}

// History returns the recorded conversation, oldest first.
func (p *Pipeline) History() []conversation.ChatMessage {
	return p.log.Messages()
}

// Run processes one utterance and always returns a Result. Failures before a
// reply could be produced (transcription, cancellation) are reported in
// Result.Error; the dispatcher itself never fails.
func (p *Pipeline) Run(ctx context.Context, utt *message.Utterance) *message.Result {
	utt.Normalize()
	start := time.Now()
	logger := slog.With("utterance_id", utt.ID, "source", utt.Source)

	locale := utt.Locale
	if locale == "" {
		locale = p.locale
	}

	result := &message.Result{UtteranceID: utt.ID}

	text := utt.Text
	if utt.HasAudio() {
		if p.transcriber == nil {
			result.Error = "no transcription backend configured"
			return result
		}
		transcript, err := p.transcriber.Transcribe(ctx, utt.Audio, utt.ContentType, locale)
		if err != nil {
			logger.Error("transcription failed", "error", err)
			result.Error = "transcription failed: " + err.Error()
			return result
		}
		text = transcript
	}
	result.Transcript = text

	if strings.TrimSpace(text) == "" {
		result.Error = "utterance has no audio and no text"
		return result
	}

	// User message is appended (and persisted) before classification.
	if err := ctx.Err(); err != nil {
		result.Error = "cancelled"
		return result
	}
	if _, err := p.log.Append(conversation.RoleUser, text); err != nil {
		// History is best-effort; the reply is still worth producing.
		logger.Warn("recording user message failed", "error", err)
	}

	classified := p.classifier.Classify(ctx, text)
	result.Intent = classified.Intent
	result.Confidence = classified.Confidence
	result.Entities = classified.Entities
	logger.Info("utterance classified", "intent", classified.Intent, "confidence", classified.Confidence)

	if err := ctx.Err(); err != nil {
		result.Error = "cancelled"
		return result
	}
	result.Reply = p.dispatcher.Perform(ctx, classified, locale)

	if err := ctx.Err(); err != nil {
		result.Error = "cancelled"
		return result
	}
	if _, err := p.log.Append(conversation.RoleAssistant, result.Reply); err != nil {
		logger.Warn("recording assistant message failed", "error", err)
	}

	if utt.Speak && p.output != nil {
		p.output.Stop()
		if err := p.output.Speak(ctx, result.Reply); err != nil {
			logger.Warn("speech output failed", "error", err)
		} else {
			result.Spoken = true
		}
	}

	logger.Info("utterance complete", "intent", result.Intent, "duration", time.Since(start))
	return result
}
