package backend

import "testing"

func TestGuessContentType(t *testing.T) {
	cases := []struct {
		path []string
		want string
	}{
		{[]string{"readme.txt"}, "text/plain"},
		{[]string{"data", "a.json"}, "application/json"},
		{[]string{"photo.PNG"}, "image/png"},
		{[]string{"archive.tar"}, "application/x-tar"},
		{[]string{"no-extension"}, "application/octet-stream"},
		{nil, "application/octet-stream"},
	}
	for _, c := range cases {
		if got := GuessContentType(c.path); got != c.want {
			t.Errorf("GuessContentType(%v) = %q, want %q", c.path, got, c.want)
		}
	}
}
