package theoraclip

import "strings"

// languageMatch ranks how well a candidate stream's LANGUAGE= tag matches
// the caller's preferred language, mirroring the original player's
// checklanguage four-way outcome.
type languageMatch int

const (
	// langMatchNone means the language codes differ outright.
	langMatchNone languageMatch = iota
	// langMatchCode means the language codes agree but both sides also
	// specify a country and those differ (e.g. "en-US" against "en-GB").
	langMatchCode
	// langMatchCodeExact means the language codes agree and at most one
	// side specifies a country, so there is nothing to conflict on (e.g.
	// "en" against "en-GB").
	langMatchCodeExact
	// langMatchLangAndCountry means the tag matches the preference in
	// full, country included.
	langMatchLangAndCountry
)

// splitLanguageTag splits a BCP-47-ish "en" or "en-US" tag into its
// language code and, if present, country subtag, both lowercased.
func splitLanguageTag(tag string) (lang, country string) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		return tag[:i], tag[i+1:]
	}
	return tag, ""
}

// checklanguage scores a candidate stream's language tag against the
// caller's preference.
func checklanguage(streamTag, preferredTag string) languageMatch {
	if streamTag == "" || preferredTag == "" {
		return langMatchNone
	}
	if strings.EqualFold(streamTag, preferredTag) {
		return langMatchLangAndCountry
	}
	streamLang, streamCountry := splitLanguageTag(streamTag)
	prefLang, prefCountry := splitLanguageTag(preferredTag)
	if streamLang != prefLang {
		return langMatchNone
	}
	if streamCountry == "" || prefCountry == "" {
		return langMatchCodeExact
	}
	return langMatchCode
}

// audioCandidate is the subset of a bootstrapped candidate audio stream the
// selector needs: its container-insertion order and its language tag.
type audioCandidate struct {
	index    int
	language string
}

// selectAudioStream picks the best-matching candidate for preferredLanguage.
// Ties are broken by insertion order: a later candidate only displaces the
// current pick on a strictly better score, never an equal one, so the
// first-seen stream of the best score wins. An empty preference selects the
// first candidate, matching the "no preference" default.
func selectAudioStream(candidates []audioCandidate, preferredLanguage string) int {
	if len(candidates) == 0 {
		return -1
	}
	if preferredLanguage == "" {
		return candidates[0].index
	}
	best := candidates[0]
	bestScore := checklanguage(best.language, preferredLanguage)
	for _, c := range candidates[1:] {
		score := checklanguage(c.language, preferredLanguage)
		if score > bestScore {
			best = c
			bestScore = score
		}
	}
	return best.index
}
