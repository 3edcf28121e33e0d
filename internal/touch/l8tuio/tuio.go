package l8tuio

import (
	"fmt"

	"github.com/lumentouch/touchcore/internal/touch/l7track"
)

// tuioAddress is the OSC address pattern for the TUIO 1.1 2D cursor
// profile (spec.md §4.8); this module implements only that profile.
const tuioAddress = "/tuio/2Dcur"

// MaxDatagramBytes is the largest encoded bundle this emitter will ever
// hand to a single UDP send, per spec.md §6.
const MaxDatagramBytes = 1472

func buildSourceMessage(appName, host string) oscMessage {
	return newOSCMessage(tuioAddress, "source", fmt.Sprintf("%s@%s", appName, host))
}

func buildAliveMessage(sessionIDs []uint32) oscMessage {
	args := make([]interface{}, 0, len(sessionIDs)+1)
	args = append(args, "alive")
	for _, id := range sessionIDs {
		args = append(args, int32(id))
	}
	return newOSCMessage(tuioAddress, args...)
}

func buildSetMessage(touch l7track.Touch) oscMessage {
	return newOSCMessage(tuioAddress, "set",
		int32(touch.SessionID),
		float32(touch.U), float32(touch.V),
		float32(touch.DU), float32(touch.DV),
		float32(0.0), // motion acceleration, always reported as 0
	)
}

func buildFseqMessage(frameNumber int32) oscMessage {
	return newOSCMessage(tuioAddress, "fseq", frameNumber)
}

// buildFrameBundles renders one frame for one endpoint into one or more
// encoded OSC bundles, in spec.md §4.8's required order: an optional
// `source` message, then `alive`, then one `set` per alive touch, then
// `fseq`. If the bundle would exceed maxBytes, `set` messages spill into
// additional bundles; `alive` appears only in the first bundle, `fseq`
// only in the last (spec.md §6).
func buildFrameBundles(appName, host string, includeSource bool, aliveIDs []uint32, touches []l7track.Touch, frameNumber int32, maxBytes int) ([][]byte, error) {
	var bundles [][]byte
	var current []oscMessage

	if includeSource {
		current = append(current, buildSourceMessage(appName, host))
	}
	current = append(current, buildAliveMessage(aliveIDs))

	flush := func(messages []oscMessage) error {
		encoded, err := (&oscBundle{messages: messages}).encode()
		if err != nil {
			return err
		}
		bundles = append(bundles, encoded)
		return nil
	}

	for _, touch := range touches {
		setMsg := buildSetMessage(touch)
		trial := appendMessage(current, setMsg)
		size, err := encodedSize(trial)
		if err != nil {
			return nil, err
		}
		if size > maxBytes && len(current) > 0 {
			if err := flush(current); err != nil {
				return nil, err
			}
			current = []oscMessage{setMsg}
			continue
		}
		current = trial
	}

	withFseq := appendMessage(current, buildFseqMessage(frameNumber))
	size, err := encodedSize(withFseq)
	if err != nil {
		return nil, err
	}
	if size > maxBytes && len(current) > 0 {
		if err := flush(current); err != nil {
			return nil, err
		}
		if err := flush([]oscMessage{buildFseqMessage(frameNumber)}); err != nil {
			return nil, err
		}
		return bundles, nil
	}

	if err := flush(withFseq); err != nil {
		return nil, err
	}
	return bundles, nil
}

func appendMessage(messages []oscMessage, m oscMessage) []oscMessage {
	out := make([]oscMessage, len(messages), len(messages)+1)
	copy(out, messages)
	return append(out, m)
}

func encodedSize(messages []oscMessage) (int, error) {
	encoded, err := (&oscBundle{messages: messages}).encode()
	if err != nil {
		return 0, err
	}
	return len(encoded), nil
}
