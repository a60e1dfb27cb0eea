package models

import "strings"

// minCandidateLen filters out filler words ("is", "my", "at") when picking
// a query key out of an utterance. Tokens must be strictly longer.
const minCandidateLen = 2

var stopKeywords = []string{"stop", "exit"}

// CandidateIDs returns the utterance tokens usable as item-ID queries,
// in utterance order. The caller conventionally takes the last one.
func CandidateIDs(utterance string) []string {
	var candidates []string
	for _, word := range strings.Fields(utterance) {
		if len(word) > minCandidateLen {
			candidates = append(candidates, word)
		}
	}
	return candidates
}

// IsStopCommand reports whether the utterance asks the assistant to quit.
// Matching is by substring, so "please stop now" terminates the loop.
func IsStopCommand(utterance string) bool {
	for _, kw := range stopKeywords {
		if strings.Contains(utterance, kw) {
			return true
		}
	}
	return false
}
