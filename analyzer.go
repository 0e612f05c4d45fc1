package revise

// Defaults for the weakness analysis pass.
const (
	// DefaultWeakTopicLimit is how many weak topics are considered per user.
	DefaultWeakTopicLimit = 5
	// DefaultItemsPerTopic is how many representative items are scheduled
	// per weak topic.
	DefaultItemsPerTopic = 3
)

// Analyzer derives topic-level weakness from recent attempt history and
// selects representative items for remedial review.
type Analyzer struct {
	store *Store
}

// NewAnalyzer creates a weakness analyzer over the store.
func NewAnalyzer(store *Store) *Analyzer {
	return &Analyzer{store: store}
}

// TopWeakTopics returns the user's weakest topics from the recent attempt
// window: highest error rate first, ties broken by attempt count descending
// (more data is a more actionable signal), then topic name. A non-positive
// limit falls back to DefaultWeakTopicLimit.
func (a *Analyzer) TopWeakTopics(userID string, limit int) ([]WeakTopic, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "UserID", Message: "required"}
	}
	if limit <= 0 {
		limit = DefaultWeakTopicLimit
	}
	return a.store.WeakTopics(userID, limit)
}

// RepresentativeItems selects items in the topic the user answered
// incorrectly or never attempted, easiest first to rebuild confidence before
// harder items. A non-positive limit falls back to DefaultItemsPerTopic.
func (a *Analyzer) RepresentativeItems(userID, topic string, limit int) ([]string, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "UserID", Message: "required"}
	}
	if topic == "" {
		return nil, &ValidationError{Field: "Topic", Message: "required"}
	}
	if limit <= 0 {
		limit = DefaultItemsPerTopic
	}
	return a.store.RepresentativeItems(userID, topic, limit)
}

// weakTopicSchedule maps a topic's error rate to the priority and review
// interval of its remedial recommendations: the weaker the topic, the more
// urgent and the sooner the review.
func weakTopicSchedule(errorRate float64) (priority, intervalDays int) {
	switch {
	case errorRate > 0.7:
		return 5, 1
	case errorRate > 0.5:
		return 4, 2
	default:
		return 3, 3
	}
}
