package chat

// suggestions are example questions cycled into the draft with Tab.
// They match the kind of entity-centric questions the graph answers
// well.
var suggestions = []string{
	"Who is Barack Obama?",
	"What is the relationship between Tesla and Edison?",
	"Which companies did Steve Jobs found?",
	"What do Marie Curie and Albert Einstein have in common?",
	"Where was Leonardo da Vinci born?",
}

// nextSuggestion advances the cycle and returns the next example.
func (m *Model) nextSuggestion() string {
	s := suggestions[m.suggestIdx%len(suggestions)]
	m.suggestIdx++
	return s
}
