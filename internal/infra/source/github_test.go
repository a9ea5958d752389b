package source

import "testing"

func TestParseGitHubURL(t *testing.T) {
	cases := []struct {
		in          string
		owner, repo string
		wantErr     bool
	}{
		{in: "https://github.com/acme/widget", owner: "acme", repo: "widget"},
		{in: "https://github.com/acme/widget.git", owner: "acme", repo: "widget"},
		{in: "https://www.github.com/acme/widget/tree/main", owner: "acme", repo: "widget"},
		{in: "https://gitlab.com/acme/widget", wantErr: true},
		{in: "https://github.com/acme", wantErr: true},
		{in: "not a url at all://", wantErr: true},
	}

	for _, tc := range cases {
		owner, repo, err := parseGitHubURL(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%s: expected error, got %s/%s", tc.in, owner, repo)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tc.in, err)
			continue
		}
		if owner != tc.owner || repo != tc.repo {
			t.Errorf("%s: got %s/%s want %s/%s", tc.in, owner, repo, tc.owner, tc.repo)
		}
	}
}
