package provisioning

import (
	"fmt"
	"strings"
)

const (
	groupSeparator          = "."
	anonymousPrefix         = "anonymous"
	topicCollection         = "topics"
	subscriptionsCollection = "subscriptions"
)

// ResourceName is a parsed "projects/{project}/{collection}/{id}" path.
type ResourceName struct {
	Project string
	ID      string
}

func (r ResourceName) path(collection string) string {
	return fmt.Sprintf("projects/%s/%s/%s", r.Project, collection, r.ID)
}

func parseResourceName(name, collection string) (ResourceName, bool) {
	parts := strings.Split(name, "/")
	if len(parts) != 4 || parts[0] != "projects" || parts[2] != collection {
		return ResourceName{}, false
	}
	if parts[1] == "" || parts[3] == "" {
		return ResourceName{}, false
	}
	return ResourceName{Project: parts[1], ID: parts[3]}, true
}

// ParseTopicName parses "projects/{project}/topics/{topic}".
// ok is false when name is not a fully qualified topic path.
func ParseTopicName(name string) (ResourceName, bool) {
	return parseResourceName(name, topicCollection)
}

// ParseSubscriptionName parses "projects/{project}/subscriptions/{subscription}".
func ParseSubscriptionName(name string) (ResourceName, bool) {
	return parseResourceName(name, subscriptionsCollection)
}

// TopicPath returns the fully qualified path of topic in project.
func TopicPath(project, topic string) string {
	return ResourceName{Project: project, ID: topic}.path(topicCollection)
}

// SubscriptionPath returns the fully qualified path of subscription in project.
func SubscriptionPath(project, subscription string) string {
	return ResourceName{Project: project, ID: subscription}.path(subscriptionsCollection)
}

// TopicShortName returns the topic id of a fully qualified topic path, or
// name unchanged when it is already a short id.
func TopicShortName(name string) string {
	if rn, ok := ParseTopicName(name); ok {
		return rn.ID
	}
	return name
}

// GroupSubscriptionName derives the subscription name for a named consumer group.
func GroupSubscriptionName(topicShortName, group string) string {
	return topicShortName + groupSeparator + group
}

// AnonymousSubscriptionName derives the subscription name for a consumer with no group.
func AnonymousSubscriptionName(topicShortName, token string) string {
	return anonymousPrefix + groupSeparator + topicShortName + groupSeparator + token
}
