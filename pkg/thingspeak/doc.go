// Package thingspeak provides a lightweight client for the ThingSpeak channel
// API. Writes are form-encoded POSTs to /update: values are staged on the
// Client with SetField, SetStatus, SetTwitterTweet and SetCreatedAt and sent
// together by WriteFields, or sent directly with WriteField and WriteRaw.
// Reads fetch the latest field value or feed entry of a channel.
//
// Every operation returns a Code rather than an error so results stay
// comparable with the other ThingSpeak client libraries: positive values are
// HTTP status codes, negative values are produced locally. Use Code.Err to
// obtain a Go error.
//
// A Client keeps one pending update and the status of the last read. It does
// no locking; callers sharing a Client between goroutines must serialize
// access themselves.
package thingspeak
