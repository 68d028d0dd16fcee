package subtitle

import "testing"

const sampleSRT = `1
00:00:00,000 --> 00:00:02,500
Hello everyone.

2
00:00:02,500 --> 00:00:05,000
Welcome to the meeting.
`

// TestLooksDetectsSRT checks subtitle detection on a typical SRT payload.
func TestLooksDetectsSRT(t *testing.T) {
	if !Looks(sampleSRT) {
		t.Fatal("expected SRT payload to be detected")
	}
}

// TestLooksRejectsPlainText checks plain transcripts are not misdetected.
func TestLooksRejectsPlainText(t *testing.T) {
	if Looks("Hello everyone. Welcome to the meeting.") {
		t.Fatal("plain text must not be detected as subtitles")
	}
	if Looks("The arrow --> points right") {
		t.Fatal("an arrow without timing markers must not be detected")
	}
}

// TestPlainTextExtractsCues checks indices and timings are dropped.
func TestPlainTextExtractsCues(t *testing.T) {
	got := PlainText(sampleSRT)
	want := "Hello everyone. Welcome to the meeting."
	if got != want {
		t.Fatalf("PlainText() = %q, want %q", got, want)
	}
}

// TestPlainTextMultiLineCue checks multi-line cue text is preserved.
func TestPlainTextMultiLineCue(t *testing.T) {
	in := "1\n00:00:00,000 --> 00:00:02,000\nfirst line\nsecond line\n"
	got := PlainText(in)
	if got != "first line second line" {
		t.Fatalf("PlainText() = %q", got)
	}
}
