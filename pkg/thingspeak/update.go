package thingspeak

import (
	"math"
	"strconv"
	"strings"
)

const headersTerm = "&headers=false"

// Update is the single pending multi-field update staged before a write.
// The zero value is not ready for use; call NewUpdate or Reset first so the
// location slots hold their unset (NaN) sentinel.
type Update struct {
	fields    [FieldMax]string
	latitude  float64
	longitude float64
	elevation float64
	status    string
	twitter   string
	tweet     string
	createdAt string
}

// NewUpdate returns an empty update.
func NewUpdate() *Update {
	u := &Update{}
	u.Reset()
	return u
}

// Reset clears every staged value.
func (u *Update) Reset() {
	for i := range u.fields {
		u.fields[i] = ""
	}
	u.latitude = math.NaN()
	u.longitude = math.NaN()
	u.elevation = math.NaN()
	u.status = ""
	u.twitter = ""
	u.tweet = ""
	u.createdAt = ""
}

// SetField stages value for field (1-8), replacing any earlier value.
func (u *Update) SetField(field int, value string) Code {
	if field < FieldMin || field > FieldMax {
		return InvalidFieldNum
	}
	if len(value) > MaxValueLength {
		return OutOfRange
	}
	u.fields[field-1] = value
	return Success
}

// SetFieldInt stages an integer value for field.
func (u *Update) SetFieldInt(field int, value int64) Code {
	return u.SetField(field, FormatInt(value))
}

// SetFieldFloat stages a floating point value for field.
func (u *Update) SetFieldFloat(field int, value float64) Code {
	return u.SetField(field, FormatFloat(value))
}

// Field returns the value staged for field, or "" when none is.
func (u *Update) Field(field int) string {
	if field < FieldMin || field > FieldMax {
		return ""
	}
	return u.fields[field-1]
}

// SetLatitude stores the latitude in degrees N. It is kept with the update
// but not transmitted.
func (u *Update) SetLatitude(latitude float64) Code {
	u.latitude = latitude
	return Success
}

// SetLongitude stores the longitude in degrees E. It is kept with the update
// but not transmitted.
func (u *Update) SetLongitude(longitude float64) Code {
	u.longitude = longitude
	return Success
}

// SetElevation stores the elevation in meters. It is kept with the update but
// not transmitted.
func (u *Update) SetElevation(elevation float64) Code {
	u.elevation = elevation
	return Success
}

// Location returns the staged latitude, longitude and elevation; unset values are NaN.
func (u *Update) Location() (latitude, longitude, elevation float64) {
	return u.latitude, u.longitude, u.elevation
}

// SetStatus stages the status message of the update.
func (u *Update) SetStatus(status string) Code {
	if len(status) > MaxValueLength {
		return OutOfRange
	}
	u.status = status
	return Success
}

// SetTwitterTweet stages the twitter account and message. Neither is stored
// when one of them is too long.
func (u *Update) SetTwitterTweet(twitter, tweet string) Code {
	if len(twitter) > MaxValueLength || len(tweet) > MaxValueLength {
		return OutOfRange
	}
	u.twitter = twitter
	u.tweet = tweet
	return Success
}

// SetCreatedAt stages the ISO 8601 timestamp of the update, e.g.
// "2017-01-12 13:22:54" or "2017-01-12 13:22:54-05". The format is checked by
// the service, not here.
func (u *Update) SetCreatedAt(createdAt string) Code {
	if len(createdAt) > MaxValueLength {
		return OutOfRange
	}
	u.createdAt = createdAt
	return Success
}

// ContentLength returns the exact length of Encode, or 0 when nothing that
// would be transmitted is staged.
func (u *Update) ContentLength() int {
	n := 0
	for i, v := range u.fields {
		if v != "" {
			n += len("&field=") + len(strconv.Itoa(i+1)) + len(v)
		}
	}
	if u.status != "" {
		n += len("&status=") + len(u.status)
	}
	if u.twitter != "" {
		n += len("&twitter=") + len(u.twitter)
	}
	if u.tweet != "" {
		n += len("&tweet=") + len(u.tweet)
	}
	if u.createdAt != "" {
		n += len("&created_at=") + len(u.createdAt)
	}
	if n == 0 {
		return 0
	}
	// The first term has no leading '&'.
	return n - 1 + len(headersTerm)
}

// Encode serializes the staged values as a form body. Values are written
// verbatim without percent-encoding.
func (u *Update) Encode() []byte {
	var b strings.Builder
	b.Grow(u.ContentLength())
	for i, v := range u.fields {
		if v != "" {
			appendTerm(&b, "field"+strconv.Itoa(i+1), v)
		}
	}
	if u.status != "" {
		appendTerm(&b, "status", u.status)
	}
	if u.twitter != "" {
		appendTerm(&b, "twitter", u.twitter)
	}
	if u.tweet != "" {
		appendTerm(&b, "tweet", u.tweet)
	}
	if u.createdAt != "" {
		appendTerm(&b, "created_at", u.createdAt)
	}
	b.WriteString(headersTerm)
	return []byte(b.String())
}

func appendTerm(b *strings.Builder, name, value string) {
	if b.Len() > 0 {
		b.WriteByte('&')
	}
	b.WriteString(name)
	b.WriteByte('=')
	b.WriteString(value)
}

// FormatInt renders an integer the way it is sent to ThingSpeak.
func FormatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

// FormatFloat renders a float in plain decimal notation using the fewest
// digits that round-trip.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
