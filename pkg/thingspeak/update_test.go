package thingspeak

import (
	"math"
	"strings"
	"testing"
)

func TestUpdateSetFieldBounds(t *testing.T) {
	tests := []struct {
		field int
		want  Code
	}{
		{field: 0, want: InvalidFieldNum},
		{field: 1, want: Success},
		{field: 8, want: Success},
		{field: 9, want: InvalidFieldNum},
		{field: -1, want: InvalidFieldNum},
	}
	for _, tc := range tests {
		u := NewUpdate()
		if got := u.SetField(tc.field, "v"); got != tc.want {
			t.Fatalf("SetField(%d) = %d, want %d", tc.field, got, tc.want)
		}
		if tc.want != Success && u.ContentLength() != 0 {
			t.Fatalf("SetField(%d) failure changed the buffer", tc.field)
		}
	}
}

func TestUpdateSetFieldLength(t *testing.T) {
	u := NewUpdate()
	if got := u.SetField(1, strings.Repeat("a", 255)); got != Success {
		t.Fatalf("255-byte value: got %d", got)
	}
	if got := u.SetField(1, strings.Repeat("b", 256)); got != OutOfRange {
		t.Fatalf("256-byte value: got %d", got)
	}
	if u.Field(1) != strings.Repeat("a", 255) {
		t.Fatalf("rejected value replaced the staged one")
	}
	// Length is measured in bytes, not runes.
	if got := u.SetField(2, strings.Repeat("é", 128)); got != OutOfRange {
		t.Fatalf("256-byte UTF-8 value: got %d", got)
	}
}

func TestUpdateEncode(t *testing.T) {
	u := NewUpdate()
	u.SetField(1, "10")
	u.SetField(2, "abc")

	want := "field1=10&field2=abc&headers=false"
	if got := string(u.Encode()); got != want {
		t.Fatalf("Encode = %q, want %q", got, want)
	}
	if got := u.ContentLength(); got != len(want) {
		t.Fatalf("ContentLength = %d, want %d", got, len(want))
	}
}

func TestUpdateEncodeOrderAndMetadata(t *testing.T) {
	u := NewUpdate()
	u.SetCreatedAt("2017-01-12 13:22:54")
	u.SetTwitterTweet("handle", "hello")
	u.SetStatus("ok")
	u.SetField(8, "z")
	u.SetField(3, "c")

	want := "field3=c&field8=z&status=ok&twitter=handle&tweet=hello&created_at=2017-01-12 13:22:54&headers=false"
	if got := string(u.Encode()); got != want {
		t.Fatalf("Encode = %q, want %q", got, want)
	}
	if got := u.ContentLength(); got != len(want) {
		t.Fatalf("ContentLength = %d, want %d", got, len(want))
	}
}

func TestUpdateStatusOnlyHasNoLeadingSeparator(t *testing.T) {
	u := NewUpdate()
	u.SetStatus("booted")
	want := "status=booted&headers=false"
	if got := string(u.Encode()); got != want {
		t.Fatalf("Encode = %q, want %q", got, want)
	}
	if got := u.ContentLength(); got != len(want) {
		t.Fatalf("ContentLength = %d, want %d", got, len(want))
	}
}

func TestUpdateContentLengthMatchesEncode(t *testing.T) {
	setters := []func(*Update){
		func(u *Update) { u.SetField(1, "1") },
		func(u *Update) { u.SetField(5, "five") },
		func(u *Update) { u.SetField(8, strings.Repeat("x", 255)) },
		func(u *Update) { u.SetStatus("s") },
		func(u *Update) { u.SetTwitterTweet("t", "") },
		func(u *Update) { u.SetTwitterTweet("", "msg") },
		func(u *Update) { u.SetCreatedAt("2017-01-12 13:22:54-05") },
	}
	for mask := 1; mask < 1<<len(setters); mask++ {
		u := NewUpdate()
		for i, set := range setters {
			if mask&(1<<i) != 0 {
				set(u)
			}
		}
		body := u.Encode()
		if u.ContentLength() != len(body) {
			t.Fatalf("mask %b: ContentLength %d != len(Encode) %d (%q)", mask, u.ContentLength(), len(body), body)
		}
		if strings.HasPrefix(string(body), "&") {
			t.Fatalf("mask %b: leading separator in %q", mask, body)
		}
	}
}

func TestUpdateEmptyContentLength(t *testing.T) {
	u := NewUpdate()
	if got := u.ContentLength(); got != 0 {
		t.Fatalf("expected 0 for empty update, got %d", got)
	}
	u.SetField(1, "")
	if got := u.ContentLength(); got != 0 {
		t.Fatalf("empty value counted as staged: %d", got)
	}
}

func TestUpdateLocationIsNotEncoded(t *testing.T) {
	u := NewUpdate()
	u.SetLatitude(52.1)
	u.SetLongitude(-1.5)
	u.SetElevation(100)
	if got := u.ContentLength(); got != 0 {
		t.Fatalf("location alone must not count as staged, got %d", got)
	}

	u.SetField(1, "1")
	if got := string(u.Encode()); got != "field1=1&headers=false" {
		t.Fatalf("location leaked into body: %q", got)
	}
	lat, long, elev := u.Location()
	if lat != 52.1 || long != -1.5 || elev != 100 {
		t.Fatalf("location not stored: %v %v %v", lat, long, elev)
	}
}

func TestUpdateTwitterTweetAtomic(t *testing.T) {
	u := NewUpdate()
	long := strings.Repeat("t", 256)
	if got := u.SetTwitterTweet("handle", long); got != OutOfRange {
		t.Fatalf("long tweet: got %d", got)
	}
	if got := u.SetTwitterTweet(long, "hi"); got != OutOfRange {
		t.Fatalf("long handle: got %d", got)
	}
	if u.ContentLength() != 0 {
		t.Fatalf("partial twitter/tweet stored: %q", u.Encode())
	}
}

func TestUpdateMetadataLength(t *testing.T) {
	u := NewUpdate()
	long := strings.Repeat("s", 256)
	if got := u.SetStatus(long); got != OutOfRange {
		t.Fatalf("SetStatus: got %d", got)
	}
	if got := u.SetCreatedAt(long); got != OutOfRange {
		t.Fatalf("SetCreatedAt: got %d", got)
	}
	if u.ContentLength() != 0 {
		t.Fatalf("rejected metadata was stored")
	}
}

func TestUpdateReset(t *testing.T) {
	u := NewUpdate()
	u.SetField(4, "x")
	u.SetStatus("s")
	u.SetLatitude(1)
	u.Reset()
	if u.ContentLength() != 0 {
		t.Fatalf("Reset left staged values")
	}
	lat, _, _ := u.Location()
	if !math.IsNaN(lat) {
		t.Fatalf("Reset left latitude %v", lat)
	}
}

func TestNumericFormatting(t *testing.T) {
	tests := []struct {
		set  func(*Update) Code
		want string
	}{
		{set: func(u *Update) Code { return u.SetFieldInt(1, -32768) }, want: "-32768"},
		{set: func(u *Update) Code { return u.SetFieldInt(1, 2147483647) }, want: "2147483647"},
		{set: func(u *Update) Code { return u.SetFieldFloat(1, 21.5) }, want: "21.5"},
		{set: func(u *Update) Code { return u.SetFieldFloat(1, 1e12) }, want: "1000000000000"},
		{set: func(u *Update) Code { return u.SetFieldFloat(1, -0.001) }, want: "-0.001"},
	}
	for _, tc := range tests {
		u := NewUpdate()
		if got := tc.set(u); got != Success {
			t.Fatalf("set returned %d", got)
		}
		if got := u.Field(1); got != tc.want {
			t.Fatalf("formatted %q, want %q", got, tc.want)
		}
	}
}
