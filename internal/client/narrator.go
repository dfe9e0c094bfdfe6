package client

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/pageza/anong-ulam/backend/internal/types"
)

// Voice holds speech parameters. Rate is in words per minute, Pitch in 0-99.
type Voice struct {
	Rate  int
	Pitch int
}

var defaultVoice = Voice{Rate: 160, Pitch: 50}

var moodVoices = map[types.Mood]Voice{
	types.MoodAnything: defaultVoice,
	types.MoodBroke:    {Rate: 150, Pitch: 45},
	types.MoodInAHurry: {Rate: 200, Pitch: 55},
	types.MoodSoupy:    {Rate: 140, Pitch: 40},
	types.MoodBarChow:  {Rate: 175, Pitch: 60},
	types.MoodHealthy:  {Rate: 155, Pitch: 50},
}

// VoiceFor returns the voice tuned for mood
func VoiceFor(mood types.Mood) Voice {
	if v, ok := moodVoices[mood.Normalize()]; ok {
		return v
	}
	return defaultVoice
}

// NarrationText is what Mama reads aloud for recipe
func NarrationText(recipe types.Recipe) string {
	var b strings.Builder
	b.WriteString(recipe.MomMessage)
	fmt.Fprintf(&b, " Ang lulutuin natin: %s.", recipe.DishName)
	for i, step := range recipe.Steps {
		fmt.Fprintf(&b, " %d. %s", i+1, step)
	}
	return b.String()
}

// Speaker renders text as speech. Speak blocks until the utterance ends or
// ctx is cancelled.
type Speaker interface {
	Speak(ctx context.Context, text string, voice Voice) error
}

// ExecSpeaker speaks through an espeak-compatible command
type ExecSpeaker struct {
	Command string
}

// Speak runs the command with text on stdin and kills it when ctx is
// cancelled. Text is never passed as an argument, so it cannot be read as a flag.
func (s ExecSpeaker) Speak(ctx context.Context, text string, voice Voice) error {
	command := s.Command
	if command == "" {
		command = "espeak"
	}
	cmd := exec.CommandContext(ctx, command,
		"-s", strconv.Itoa(voice.Rate),
		"-p", strconv.Itoa(voice.Pitch),
		"--stdin",
	)
	cmd.Stdin = strings.NewReader(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s failed: %w: %s", command, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Narrator plays at most one utterance at a time
type Narrator struct {
	speaker Speaker
	logger  *zap.Logger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// NewNarrator creates a narrator backed by speaker
func NewNarrator(speaker Speaker, logger *zap.Logger) *Narrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Narrator{speaker: speaker, logger: logger}
}

// Speak cancels any current utterance and starts text in the mood's voice.
// onDone, if set, runs when the utterance finishes without being stopped or
// superseded.
func (n *Narrator) Speak(text string, mood types.Mood, onDone func()) {
	n.mu.Lock()
	if n.cancel != nil {
		n.cancel()
	}
	n.gen++
	gen := n.gen
	prev := n.done
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	n.cancel = cancel
	n.done = done
	n.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()

		if prev != nil {
			<-prev
		}
		if ctx.Err() != nil {
			return
		}

		err := n.speaker.Speak(ctx, text, VoiceFor(mood))
		if err != nil && ctx.Err() == nil {
			n.logger.Warn("narration failed", zap.Error(err))
		}

		n.mu.Lock()
		current := n.gen == gen
		if current {
			n.cancel = nil
		}
		n.mu.Unlock()

		if err == nil && current && ctx.Err() == nil && onDone != nil {
			onDone()
		}
	}()
}

// Stop cancels the current utterance, if any
func (n *Narrator) Stop() {
	if n == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cancel != nil {
		n.cancel()
		n.cancel = nil
	}
	n.gen++
}

// Speaking reports whether an utterance is in progress
func (n *Narrator) Speaking() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.cancel != nil
}

// Wait blocks until the most recent utterance has ended
func (n *Narrator) Wait() {
	n.mu.Lock()
	done := n.done
	n.mu.Unlock()
	if done != nil {
		<-done
	}
}
