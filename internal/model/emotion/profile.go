package emotion

// Profile bundles the static presentation and coping data for a label.
// These are fixed lookup tables consumed by the mood analytics responses.
type Profile struct {
	Emoji  string `json:"emoji"`
	Color  string `json:"color"`
	Coping string `json:"coping"`
}

var profiles = map[Label]Profile{
	Joy: {
		Emoji:  "😊",
		Color:  "#f6c344",
		Coping: "Hold onto what brought this on — jot it down so you can revisit it on harder days.",
	},
	Sadness: {
		Emoji:  "😢",
		Color:  "#5b8bd9",
		Coping: "Be gentle with yourself. A short walk or a message to someone you trust can ease the weight.",
	},
	Anger: {
		Emoji:  "😠",
		Color:  "#d9534f",
		Coping: "Try stepping away for a few minutes and breathing slowly before returning to what set this off.",
	},
	Fear: {
		Emoji:  "😨",
		Color:  "#8c6bc8",
		Coping: "Ground yourself: name five things you can see, four you can touch, three you can hear.",
	},
	Surprise: {
		Emoji:  "😮",
		Color:  "#4fb0a5",
		Coping: "Give yourself a moment to take it in before deciding how to respond.",
	},
	Disgust: {
		Emoji:  "🤢",
		Color:  "#7a9a4b",
		Coping: "It can help to put distance between yourself and what triggered this, then revisit it calmly.",
	},
	Neutral: {
		Emoji:  "😐",
		Color:  "#9aa0a6",
		Coping: "A steady day is a good day. Checking in with yourself regularly keeps it that way.",
	},
}

// ProfileFor returns the static profile for a label, falling back to Neutral
// for anything outside the known set.
func ProfileFor(label Label) Profile {
	if p, ok := profiles[label]; ok {
		return p
	}
	return profiles[Neutral]
}
