// Package models contains the data types shared by the chatview packages.
package models

// EventNewMessage is the name of the event dispatched for every finalized message
const EventNewMessage = "new-message"

// FallbackErrorText is shown when neither a template nor the caller supplies error text
const FallbackErrorText = "Error, please try again."

// Class names tagged onto transcript nodes. Hosts style and test against these.
const (
	ClassMessagesContainer = "messages"
	ClassInnerContainer    = "inner-message-container"
	ClassMessageText       = "message-text"
	ClassAIText            = "ai-message-text"
	ClassUserText          = "user-message-text"
	ClassLoadingText       = "loading-message-text"
	ClassStreamed          = "streamed-message"
	ClassErrorText         = "error-message-text"
	ClassDotsFlashing      = "dots-flashing"
	ClassAvatar            = "avatar"
	ClassName              = "name"
)
