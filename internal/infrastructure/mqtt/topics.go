package mqtt

import "fmt"

// Topic layout for the Lumen Route feed.
const (
	// TopicPrefix is the base for all Lumen Route topics.
	TopicPrefix = "lumenroute"
)

// Topics provides builders for Lumen Route MQTT topics. Using these
// helpers keeps topic naming consistent between the publisher and the
// operator tooling that subscribes.
type Topics struct{}

// Status returns the retained status topic.
//
// Example: lumenroute/status
func (Topics) Status() string {
	return TopicPrefix + "/status"
}

// Event returns the topic for one event kind.
//
// Example: lumenroute/event/send_error
func (Topics) Event(kind string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefix, kind)
}
