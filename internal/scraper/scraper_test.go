package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/pso2-quests/internal/quest"
)

var anchor2024 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

const listingHTML = `
<html>
	<body>
		<section class="emergency-section">
			<ul>
				<li class="news-item"><a class="image" onclick="ShowDetails('uq-jan', 'urgent-quests')"></a></li>
				<li class="news-item"><a class="image" onclick="ShowDetails('uq-broken', 'urgent-quests')"></a></li>
				<li class="news-item"><a class="image" onclick="window.open('elsewhere')"></a></li>
				<li class="news-item"><a class="image" onclick="ShowDetails('uq-feb', 'urgent-quests')"></a></li>
			</ul>
		</section>
		<section class="other-section">
			<li class="news-item"><a class="image" onclick="ShowDetails('not-urgent', 'news')"></a></li>
		</section>
	</body>
</html>`

const januaryArticle = `
<html>
	<head><meta property="og:url" content="https://pso2.com/news/urgent-quests/uq-jan"></head>
	<body>
		<table><tbody>
			<tr><td style="background: #FF0000;"></td><td>Boss Fight</td></tr>
			<tr><td style="background: rgb(0, 0, 255);"></td><td> Blue   Quest </td></tr>
		</tbody></table>
		<table><tbody>
			<tr><td>Week</td><td>01/05</td><td>01/06</td><td>01/07</td><td>01/08</td><td>01/09</td><td>01/10</td><td>01/11</td></tr>
			<tr><td>02:00 PM</td><td style="background: #ff0000;"></td><td></td><td></td><td></td><td></td><td></td><td></td></tr>
			<tr><td>09:00 PM</td><td></td><td></td><td style="background:#0000ff"></td><td></td><td></td><td></td><td></td></tr>
		</tbody></table>
	</body>
</html>`

const februaryArticle = `
<html>
	<body>
		<table><tbody>
			<tr><td style="background-color: #00ff00"></td><td>Green Raid</td></tr>
		</tbody></table>
		<table><tbody>
			<tr><td>Week</td><td>02/02</td><td>02/03</td><td>02/04</td><td>02/05</td><td>02/06</td><td>02/07</td><td>02/08</td></tr>
			<tr><td>7:00 pm</td><td style="background-color: #00ff00"></td><td></td><td></td><td></td><td></td><td></td><td></td></tr>
		</tbody></table>
	</body>
</html>`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	serve := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "pso2-quests") {
				t.Errorf("User-Agent = %q, should contain 'pso2-quests'", ua)
			}
			fmt.Fprint(w, body)
		}
	}
	mux.HandleFunc("/news/urgent-quests", serve(listingHTML))
	mux.HandleFunc("/news/urgent-quests/uq-jan", serve(januaryArticle))
	mux.HandleFunc("/news/urgent-quests/uq-feb", serve(februaryArticle))
	mux.HandleFunc("/news/urgent-quests/uq-broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestFetchQuests(t *testing.T) {
	server := newTestServer(t)

	s := New(
		WithURL(server.URL+"/news/urgent-quests/"),
		WithClock(fixedClock(anchor2024)),
	)

	quests := s.FetchQuests(context.Background())

	if len(quests) != 3 {
		t.Fatalf("FetchQuests() returned %d quests, want 3: %+v", len(quests), quests)
	}
	if !quest.IsDescending(quests) {
		t.Errorf("FetchQuests() result not in descending order: %+v", quests)
	}

	want := []struct {
		start time.Time
		name  string
	}{
		// 7:00 PM PST on Feb 2
		{time.Date(2024, 2, 3, 3, 0, 0, 0, time.UTC), "Green Raid: " + server.URL + "/news/urgent-quests/uq-feb"},
		// 9:00 PM PST on Jan 7
		{time.Date(2024, 1, 8, 5, 0, 0, 0, time.UTC), "Blue Quest: https://pso2.com/news/urgent-quests/uq-jan"},
		// 2:00 PM PST on Jan 5
		{time.Date(2024, 1, 5, 22, 0, 0, 0, time.UTC), "Boss Fight: https://pso2.com/news/urgent-quests/uq-jan"},
	}
	for i, w := range want {
		if !quests[i].StartTime.Equal(w.start) {
			t.Errorf("quests[%d].StartTime = %v, want %v", i, quests[i].StartTime, w.start)
		}
		if quests[i].Name != w.name {
			t.Errorf("quests[%d].Name = %q, want %q", i, quests[i].Name, w.name)
		}
	}
}

func TestFetchQuests_ListingFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "HTTP error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
		},
		{
			name: "empty page",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "<html><body><p>No quests</p></body></html>")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			s := New(WithURL(server.URL))
			quests := s.FetchQuests(context.Background())

			if quests == nil {
				t.Fatal("FetchQuests() returned nil, want empty slice")
			}
			if len(quests) != 0 {
				t.Errorf("FetchQuests() returned %d quests, want 0", len(quests))
			}
		})
	}
}

func TestFetchQuests_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	s := New(WithURL(url))
	if quests := s.FetchQuests(context.Background()); len(quests) != 0 {
		t.Errorf("FetchQuests() returned %d quests, want 0", len(quests))
	}
}

func TestNew(t *testing.T) {
	s := New()

	if s.client == nil {
		t.Error("scraper client is nil")
	}
	if s.url != UrgentQuestsURL {
		t.Errorf("scraper url = %q, want %q", s.url, UrgentQuestsURL)
	}
	if s.location == nil || s.location.String() != SourceTimezone {
		t.Errorf("scraper location = %v, want %s", s.location, SourceTimezone)
	}
	if s.yearPolicy != YearCurrent {
		t.Errorf("scraper yearPolicy = %q, want %q", s.yearPolicy, YearCurrent)
	}
}

func TestParseListing(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listingHTML))
	if err != nil {
		t.Fatalf("NewDocumentFromReader() error: %v", err)
	}

	paths := ParseListing(doc)

	want := []string{"uq-jan", "uq-broken", "uq-feb"}
	if len(paths) != len(want) {
		t.Fatalf("ParseListing() = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestParseArticle(t *testing.T) {
	s := New(WithClock(fixedClock(anchor2024)))

	quests, err := s.ParseArticle(strings.NewReader(februaryArticle), "https://example.com/uq-feb")
	if err != nil {
		t.Fatalf("ParseArticle() error: %v", err)
	}
	if len(quests) != 1 {
		t.Fatalf("ParseArticle() returned %d quests, want 1", len(quests))
	}
	// No og:url meta, so the article URL is the source reference
	if quests[0].Name != "Green Raid: https://example.com/uq-feb" {
		t.Errorf("Name = %q", quests[0].Name)
	}
}

func TestParseArticle_PairsInDiscoveryOrder(t *testing.T) {
	html := `
	<table><tbody><tr><td style="background: #111111;"></td><td>First</td></tr></tbody></table>
	<table><tbody><tr><td style="background: #111111;"></td><td>Second</td></tr></tbody></table>
	<table><tbody>
		<tr><td>Week</td><td>3/1</td><td>3/2</td><td>3/3</td><td>3/4</td><td>3/5</td><td>3/6</td><td>3/7</td></tr>
		<tr><td>1:00 PM</td><td style="background: #111111;"></td><td></td><td></td><td></td><td></td><td></td><td></td></tr>
	</tbody></table>
	<table><tbody>
		<tr><td>Week</td><td>4/1</td><td>4/2</td><td>4/3</td><td>4/4</td><td>4/5</td><td>4/6</td><td>4/7</td></tr>
		<tr><td>1:00 PM</td><td style="background: #111111;"></td><td></td><td></td><td></td><td></td><td></td><td></td></tr>
	</tbody></table>
	<table><tbody>
		<tr><td>a</td><td>b</td><td>c</td></tr>
	</tbody></table>`

	s := New(WithClock(fixedClock(anchor2024)))
	quests, err := s.ParseArticle(strings.NewReader(html), "src")
	if err != nil {
		t.Fatalf("ParseArticle() error: %v", err)
	}
	if len(quests) != 2 {
		t.Fatalf("ParseArticle() returned %d quests, want 2", len(quests))
	}
	if quests[0].Name != "Second: src" || quests[0].StartTime.Month() != time.April {
		t.Errorf("quests[0] = %+v, want Second in April", quests[0])
	}
	if quests[1].Name != "First: src" || quests[1].StartTime.Month() != time.March {
		t.Errorf("quests[1] = %+v, want First in March", quests[1])
	}
}

func TestSortQuests(t *testing.T) {
	base := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	quests := []quest.Quest{
		quest.New(base.Add(2*time.Hour), "b"),
		quest.New(base.Add(72*time.Hour), "d"),
		quest.New(base, "a"),
	}

	sortQuests(quests)

	if quests[0].Name != "d" || quests[2].Name != "a" {
		t.Errorf("sortQuests() order = %s,%s,%s", quests[0].Name, quests[1].Name, quests[2].Name)
	}
}
