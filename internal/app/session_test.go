package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/keyrace/internal/adapters/store"
	service "github.com/okian/keyrace/internal/app"
	"github.com/okian/keyrace/internal/domain/model"
	"github.com/okian/keyrace/internal/domain/round"
	"github.com/okian/keyrace/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

const prompt = "abcdefghijklmnopqrst"

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type sent struct {
	to     string
	notice model.Notice
}

type fakeGateway struct {
	mu   sync.Mutex
	sent []sent
}

func (g *fakeGateway) Broadcast(_ context.Context, n model.Notice) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, sent{notice: n})
}

func (g *fakeGateway) Send(_ context.Context, connID string, n model.Notice) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, sent{to: connID, notice: n})
}

// count returns how many notices of kind went to "to" ("" for broadcasts).
func (g *fakeGateway) count(to, kind string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, s := range g.sent {
		if s.to == to && s.notice.Type == kind {
			n++
		}
	}
	return n
}

func (g *fakeGateway) last(to, kind string) (model.Notice, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := len(g.sent) - 1; i >= 0; i-- {
		if g.sent[i].to == to && g.sent[i].notice.Type == kind {
			return g.sent[i].notice, true
		}
	}
	return model.Notice{}, false
}

// flakyStore fails the named operation while failing is set.
type flakyStore struct {
	*store.Memory
	mu      sync.Mutex
	failing string
}

var errInjected = errors.New("injected store failure")

func (f *flakyStore) failOn(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = op
}

func (f *flakyStore) should(op string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failing == op
}

func (f *flakyStore) Set(ctx context.Context, key, value string) error {
	if f.should(store.OpSet) {
		return errInjected
	}
	return f.Memory.Set(ctx, key, value)
}

func (f *flakyStore) HSetField(ctx context.Context, key, field, value string) error {
	if f.should(store.OpHSet) {
		return errInjected
	}
	return f.Memory.HSetField(ctx, key, field, value)
}

func (f *flakyStore) FlushAll(ctx context.Context) error {
	if f.should(store.OpFlushAll) {
		return errInjected
	}
	return f.Memory.FlushAll(ctx)
}

type fixture struct {
	sess *service.Session
	gw   *fakeGateway
	st   *flakyStore
}

func newFixture(t *testing.T, opts ...service.Option) fixture {
	t.Helper()
	f := fixture{gw: &fakeGateway{}, st: &flakyStore{Memory: store.NewMemory()}}
	opts = append([]service.Option{
		service.WithLogger(logger.Nop()),
		service.WithChooser(round.NewChooser(round.WithPrompts([]string{prompt}))),
	}, opts...)
	f.sess = service.New(f.st, f.gw, opts...)
	if err := f.sess.Start(context.Background()); err != nil {
		t.Fatalf("start session: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = f.sess.Stop(ctx)
	})
	return f
}

// typeN sends correct keystrokes for the first n indices, then wrong ones up to total.
func (f fixture) typeN(ctx context.Context, connID string, correct, total int) {
	for i := 0; i < total; i++ {
		char := string(prompt[i])
		if i >= correct {
			char = "#"
		}
		_, err := f.sess.RecordKeystroke(ctx, connID, i, char)
		So(err, ShouldBeNil)
	}
}

func TestJoin(t *testing.T) {
	Convey("Given a started session", t, func() {
		f := newFixture(t)
		ctx := context.Background()

		Convey("When two participants connect", func() {
			first, err := f.sess.Join(ctx, "c1", "ana")
			So(err, ShouldBeNil)
			second, err := f.sess.Join(ctx, "c2", "")
			So(err, ShouldBeNil)

			Convey("Then only the first is host", func() {
				So(first.IsHost, ShouldBeTrue)
				So(second.IsHost, ShouldBeFalse)
				So(second.Identity, ShouldEqual, model.AnonymousIdentity)

				n, ok := f.gw.last("c1", model.NoticeYouAreHost)
				So(ok, ShouldBeTrue)
				So(n.Data, ShouldResemble, model.HostStatus{IsHost: true})
				n, ok = f.gw.last("c2", model.NoticeYouAreHost)
				So(ok, ShouldBeTrue)
				So(n.Data, ShouldResemble, model.HostStatus{IsHost: false})
			})
		})

		Convey("When someone joins a round in progress", func() {
			_, _ = f.sess.Join(ctx, "c1", "ana")
			_, err := f.sess.Restart(ctx, "c1")
			So(err, ShouldBeNil)
			_, _ = f.sess.Join(ctx, "c2", "bo")

			Convey("Then the newcomer receives the prompt", func() {
				n, ok := f.gw.last("c2", model.NoticeText)
				So(ok, ShouldBeTrue)
				So(n.Data, ShouldEqual, prompt)
			})
		})
	})
}

func TestRestart(t *testing.T) {
	Convey("Given a host and a guest", t, func() {
		f := newFixture(t)
		ctx := context.Background()
		_, _ = f.sess.Join(ctx, "c1", "ana")
		_, _ = f.sess.Join(ctx, "c2", "bo")

		Convey("When the guest restarts", func() {
			_, err := f.sess.Restart(ctx, "c2")

			Convey("Then it is refused", func() {
				So(errors.Is(err, service.ErrNotHost), ShouldBeTrue)
				So(service.Code(err), ShouldEqual, service.CodeNotHost)
				So(f.gw.count("", model.NoticeText), ShouldEqual, 0)
			})
		})

		Convey("When an unknown connection restarts", func() {
			_, err := f.sess.Restart(ctx, "nobody")
			So(errors.Is(err, service.ErrUnknownParticipant), ShouldBeTrue)
		})

		Convey("When the host restarts twice", func() {
			n1, err := f.sess.Restart(ctx, "c1")
			So(err, ShouldBeNil)
			n2, err := f.sess.Restart(ctx, "c1")
			So(err, ShouldBeNil)

			Convey("Then round numbers increase and the prompt is broadcast", func() {
				So(n1, ShouldEqual, 1)
				So(n2, ShouldEqual, 2)
				So(f.gw.count("", model.NoticeText), ShouldEqual, 2)
				n, _ := f.gw.last("", model.NoticeText)
				So(n.Data, ShouldEqual, prompt)

				view, err := f.sess.Round(ctx)
				So(err, ShouldBeNil)
				So(view.Round, ShouldEqual, 2)
				So(view.Phase, ShouldEqual, "in_progress")
				So(view.Prompt, ShouldEqual, prompt)
				So(len(view.Participants), ShouldEqual, 2)
			})
		})

		Convey("When the store rejects the prompt write", func() {
			f.st.failOn(store.OpSet)
			_, err := f.sess.Restart(ctx, "c1")

			Convey("Then no round starts", func() {
				So(errors.Is(err, errInjected), ShouldBeTrue)
				f.st.failOn("")
				view, err := f.sess.Round(ctx)
				So(err, ShouldBeNil)
				So(view.Round, ShouldEqual, 0)
				So(view.Phase, ShouldEqual, "idle")
			})
		})
	})
}

func TestRecordKeystroke(t *testing.T) {
	Convey("Given a participant", t, func() {
		f := newFixture(t)
		ctx := context.Background()
		_, _ = f.sess.Join(ctx, "c1", "ana")

		Convey("When no round is active", func() {
			_, err := f.sess.RecordKeystroke(ctx, "c1", 0, "a")
			So(errors.Is(err, service.ErrNoActiveRound), ShouldBeTrue)
		})

		Convey("When a round is active", func() {
			_, err := f.sess.Restart(ctx, "c1")
			So(err, ShouldBeNil)

			Convey("Then correctness is decided against the prompt", func() {
				ok, err := f.sess.RecordKeystroke(ctx, "c1", 0, "a")
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)

				ok, err = f.sess.RecordKeystroke(ctx, "c1", 1, "x")
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)

				ok, err = f.sess.RecordKeystroke(ctx, "c1", 2, "cc")
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)

				tally, err := f.st.HGetAll(ctx, store.TallyKey(1, "c1"))
				So(err, ShouldBeNil)
				So(tally, ShouldResemble, map[string]string{"0": "1", "1": "0", "2": "0"})
			})

			Convey("Then a retyped index keeps the last value", func() {
				_, _ = f.sess.RecordKeystroke(ctx, "c1", 0, "z")
				_, _ = f.sess.RecordKeystroke(ctx, "c1", 0, "a")
				tally, _ := f.st.HGetAll(ctx, store.TallyKey(1, "c1"))
				So(tally["0"], ShouldEqual, "1")
			})

			Convey("Then indices outside the prompt are rejected", func() {
				_, err := f.sess.RecordKeystroke(ctx, "c1", len(prompt), "a")
				So(errors.Is(err, service.ErrIndexOutOfRange), ShouldBeTrue)
				_, err = f.sess.RecordKeystroke(ctx, "c1", -1, "a")
				So(errors.Is(err, service.ErrIndexOutOfRange), ShouldBeTrue)
			})

			Convey("Then unknown connections are rejected", func() {
				_, err := f.sess.RecordKeystroke(ctx, "ghost", 0, "a")
				So(errors.Is(err, service.ErrUnknownParticipant), ShouldBeTrue)
			})

			Convey("Then keystrokes after the lock are rejected", func() {
				_, err := f.sess.FinishTyping(ctx, "c1")
				So(err, ShouldBeNil)
				_, err = f.sess.RecordKeystroke(ctx, "c1", 0, "a")
				So(errors.Is(err, service.ErrRoundLocked), ShouldBeTrue)
			})
		})
	})
}

func TestFinishTyping(t *testing.T) {
	Convey("Given a round with many participants", t, func() {
		f := newFixture(t)
		ctx := context.Background()
		for i := 0; i < 10; i++ {
			_, _ = f.sess.Join(ctx, fmt.Sprintf("c%d", i), fmt.Sprintf("p%d", i))
		}
		_, err := f.sess.Restart(ctx, "c0")
		So(err, ShouldBeNil)

		Convey("When everyone signals finished typing at once", func() {
			var wg sync.WaitGroup
			var mu sync.Mutex
			winners := 0
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func(id string) {
					defer wg.Done()
					locked, err := f.sess.FinishTyping(ctx, id)
					if err == nil && locked {
						mu.Lock()
						winners++
						mu.Unlock()
					}
				}(fmt.Sprintf("c%d", i))
			}
			wg.Wait()

			Convey("Then lock_typing is broadcast exactly once", func() {
				So(winners, ShouldEqual, 1)
				So(f.gw.count("", model.NoticeLockTyping), ShouldEqual, 1)
			})
		})

		Convey("When the next round starts", func() {
			_, _ = f.sess.FinishTyping(ctx, "c1")
			_, _ = f.sess.Restart(ctx, "c0")
			locked, err := f.sess.FinishTyping(ctx, "c2")

			Convey("Then it can be locked again", func() {
				So(err, ShouldBeNil)
				So(locked, ShouldBeTrue)
				So(f.gw.count("", model.NoticeLockTyping), ShouldEqual, 2)
			})
		})
	})
}

func TestSubmitCompletion(t *testing.T) {
	Convey("Given two participants in round 1", t, func() {
		f := newFixture(t)
		ctx := context.Background()
		_, _ = f.sess.Join(ctx, "a", "alice")
		_, _ = f.sess.Join(ctx, "b", "bob")
		_, err := f.sess.Restart(ctx, "a")
		So(err, ShouldBeNil)

		f.typeN(ctx, "a", 18, 20)
		f.typeN(ctx, "b", 15, 15)

		Convey("When the first participant submits", func() {
			res, err := f.sess.SubmitCompletion(ctx, "a")

			Convey("Then the winner is recorded but nothing is published", func() {
				So(err, ShouldBeNil)
				So(res, ShouldBeNil)
				So(f.gw.count("", model.NoticeRounds), ShouldEqual, 0)

				got, err := f.sess.Results(ctx, 1)
				So(err, ShouldBeNil)
				So(got.Winner, ShouldEqual, "alice")
				So(got.WinnerScore, ShouldEqual, 16)
			})

			Convey("And the same participant submits again", func() {
				res, err := f.sess.SubmitCompletion(ctx, "a")

				Convey("Then it is not double counted", func() {
					So(err, ShouldBeNil)
					So(res, ShouldBeNil)
					stats, err := f.sess.Stats(ctx)
					So(err, ShouldBeNil)
					So(stats.Finished, ShouldEqual, 1)
				})
			})

			Convey("And the second participant submits", func() {
				res, err := f.sess.SubmitCompletion(ctx, "b")

				Convey("Then the result is returned and broadcast once", func() {
					So(err, ShouldBeNil)
					So(res, ShouldNotBeNil)
					So(*res, ShouldResemble, model.RoundResult{
						RoundNumber: 1,
						Prompt:      prompt,
						Winner:      "alice",
						WinnerScore: 16,
					})
					So(f.gw.count("", model.NoticeRounds), ShouldEqual, 1)

					board, err := f.st.HGetAll(ctx, store.ScoresKey(1))
					So(err, ShouldBeNil)
					So(board["alice"], ShouldEqual, `{"correct":18,"incorrect":2}`)
					So(board["bob"], ShouldEqual, `{"correct":15,"incorrect":0}`)
				})
			})
		})

		Convey("When a store write fails during submission", func() {
			f.st.failOn(store.OpSet)
			_, err := f.sess.SubmitCompletion(ctx, "a")

			Convey("Then the submission is not counted and can be retried", func() {
				So(errors.Is(err, errInjected), ShouldBeTrue)
				stats, _ := f.sess.Stats(ctx)
				So(stats.Finished, ShouldEqual, 0)

				f.st.failOn("")
				_, err = f.sess.SubmitCompletion(ctx, "a")
				So(err, ShouldBeNil)
				stats, _ = f.sess.Stats(ctx)
				So(stats.Finished, ShouldEqual, 1)
			})
		})

		Convey("When an unknown connection submits", func() {
			_, err := f.sess.SubmitCompletion(ctx, "ghost")
			So(errors.Is(err, service.ErrUnknownParticipant), ShouldBeTrue)
		})
	})
}

func TestConcurrentCompletions(t *testing.T) {
	Convey("Given many participants finishing at the same time", t, func() {
		f := newFixture(t)
		ctx := context.Background()
		const n = 25
		for i := 0; i < n; i++ {
			_, _ = f.sess.Join(ctx, fmt.Sprintf("c%d", i), fmt.Sprintf("p%d", i))
		}
		_, err := f.sess.Restart(ctx, "c0")
		So(err, ShouldBeNil)
		// p7 is the only one with a keystroke, so the winner is stable.
		_, err = f.sess.RecordKeystroke(ctx, "c7", 0, "a")
		So(err, ShouldBeNil)

		var wg sync.WaitGroup
		results := make(chan *model.RoundResult, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				res, err := f.sess.SubmitCompletion(ctx, id)
				if err == nil && res != nil {
					results <- res
				}
			}(fmt.Sprintf("c%d", i))
		}
		wg.Wait()
		close(results)

		Convey("Then exactly one submission returns the result", func() {
			var got []*model.RoundResult
			for r := range results {
				got = append(got, r)
			}
			So(len(got), ShouldEqual, 1)
			So(got[0].Winner, ShouldEqual, "p7")
			So(got[0].WinnerScore, ShouldEqual, 1)
			So(f.gw.count("", model.NoticeRounds), ShouldEqual, 1)

			stats, err := f.sess.Stats(ctx)
			So(err, ShouldBeNil)
			So(stats.Finished, ShouldEqual, n)
			So(stats.Published, ShouldBeTrue)
		})
	})
}

func TestLeave(t *testing.T) {
	Convey("Given a host, two guests and a finished round 1", t, func() {
		f := newFixture(t)
		ctx := context.Background()
		_, _ = f.sess.Join(ctx, "h", "host")
		_, _ = f.sess.Join(ctx, "g1", "guest1")
		_, _ = f.sess.Join(ctx, "g2", "guest2")
		_, err := f.sess.Restart(ctx, "h")
		So(err, ShouldBeNil)
		for _, id := range []string{"h", "g1", "g2"} {
			_, err := f.sess.SubmitCompletion(ctx, id)
			So(err, ShouldBeNil)
		}
		So(f.gw.count("", model.NoticeRounds), ShouldEqual, 1)

		Convey("When the host leaves", func() {
			So(f.sess.Leave(ctx, "h"), ShouldBeNil)

			Convey("Then the earliest remaining joiner becomes host", func() {
				n, ok := f.gw.last("g1", model.NoticeYouAreHost)
				So(ok, ShouldBeTrue)
				So(n.Data, ShouldResemble, model.HostStatus{IsHost: true})
				So(f.gw.count("g2", model.NoticeYouAreHost), ShouldEqual, 1)

				stats, err := f.sess.Stats(ctx)
				So(err, ShouldBeNil)
				So(stats.Host, ShouldEqual, "guest1")
				So(stats.Round, ShouldEqual, 0)
				So(stats.Phase, ShouldEqual, "idle")
			})

			Convey("Then earlier durable results are kept", func() {
				res, err := f.sess.Results(ctx, 1)
				So(err, ShouldBeNil)
				So(res.Prompt, ShouldEqual, prompt)
			})

			Convey("Then the new host can start round 1 afresh", func() {
				n, err := f.sess.Restart(ctx, "g1")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
				_, err = f.sess.Results(ctx, 1)
				So(errors.Is(err, service.ErrNoWinnerYet), ShouldBeTrue)
			})
		})

		Convey("When everyone leaves", func() {
			for _, id := range []string{"g2", "h", "g1"} {
				So(f.sess.Leave(ctx, id), ShouldBeNil)
			}

			Convey("Then the session and the store are reset", func() {
				stats, err := f.sess.Stats(ctx)
				So(err, ShouldBeNil)
				So(stats.Participants, ShouldEqual, 0)
				So(stats.Host, ShouldEqual, "")
				So(stats.Round, ShouldEqual, 0)
				So(f.st.Len(), ShouldEqual, 0)

				_, err = f.sess.Results(ctx, 1)
				So(errors.Is(err, service.ErrNoWinnerYet), ShouldBeTrue)
			})

			Convey("Then the next joiner is host", func() {
				p, err := f.sess.Join(ctx, "late", "late")
				So(err, ShouldBeNil)
				So(p.IsHost, ShouldBeTrue)
			})
		})

		Convey("When an unknown connection leaves", func() {
			So(f.sess.Leave(ctx, "ghost"), ShouldBeNil)
			stats, _ := f.sess.Stats(ctx)
			So(stats.Participants, ShouldEqual, 3)
		})
	})

	Convey("Given a round waiting on one straggler", t, func() {
		f := newFixture(t)
		ctx := context.Background()
		_, _ = f.sess.Join(ctx, "h", "host")
		_, _ = f.sess.Join(ctx, "g", "guest")
		_, _ = f.sess.Join(ctx, "s", "straggler")
		_, _ = f.sess.Restart(ctx, "h")
		_, _ = f.sess.SubmitCompletion(ctx, "h")
		_, _ = f.sess.SubmitCompletion(ctx, "g")
		So(f.gw.count("", model.NoticeRounds), ShouldEqual, 0)

		Convey("When the straggler disconnects", func() {
			So(f.sess.Leave(ctx, "s"), ShouldBeNil)

			Convey("Then the result is published", func() {
				So(f.gw.count("", model.NoticeRounds), ShouldEqual, 1)
			})
		})
	})
}

func TestResults(t *testing.T) {
	Convey("Given a session without any submission", t, func() {
		f := newFixture(t)

		Convey("Then results report no winner yet", func() {
			_, err := f.sess.Results(context.Background(), 1)
			So(errors.Is(err, service.ErrNoWinnerYet), ShouldBeTrue)
			So(service.Code(err), ShouldEqual, service.CodeNoWinnerYet)
		})
	})
}

func TestLifecycle(t *testing.T) {
	Convey("Given a session that was never started", t, func() {
		sess := service.New(store.NewMemory(), nil, service.WithLogger(logger.Nop()))

		Convey("Then operations fail with ErrNotStarted", func() {
			_, err := sess.Join(context.Background(), "c1", "ana")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(sess.Stop(context.Background()), ShouldBeNil)
		})
	})

	Convey("Given a stopped session", t, func() {
		sess := service.New(store.NewMemory(), nil, service.WithLogger(logger.Nop()), service.WithQueueSize(4))
		ctx := context.Background()
		So(sess.Start(ctx), ShouldBeNil)
		So(sess.Start(ctx), ShouldBeNil)
		So(sess.Stop(ctx), ShouldBeNil)

		Convey("Then operations fail with ErrStopped and it cannot restart", func() {
			_, err := sess.Join(ctx, "c1", "ana")
			So(errors.Is(err, service.ErrStopped), ShouldBeTrue)
			So(sess.Leave(ctx, "c1"), ShouldEqual, service.ErrStopped)
			So(sess.Start(ctx), ShouldEqual, service.ErrStopped)
		})
	})
}

// gatedStore holds HSetField until release is closed.
type gatedStore struct {
	*store.Memory
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) HSetField(ctx context.Context, key, field, value string) error {
	select {
	case g.entered <- struct{}{}:
	default:
	}
	select {
	case <-g.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return g.Memory.HSetField(ctx, key, field, value)
}

func TestBackpressure(t *testing.T) {
	Convey("Given a session whose worker is stuck on the store", t, func() {
		ctx := context.Background()
		st := &gatedStore{Memory: store.NewMemory(), entered: make(chan struct{}, 1), release: make(chan struct{})}
		sess := service.New(st, nil,
			service.WithLogger(logger.Nop()),
			service.WithQueueSize(1),
			service.WithStoreTimeout(5*time.Second),
			service.WithChooser(round.NewChooser(round.WithPrompts([]string{prompt}))),
		)
		So(sess.Start(ctx), ShouldBeNil)
		defer func() { _ = sess.Stop(ctx) }()

		_, err := sess.Join(ctx, "c1", "ana")
		So(err, ShouldBeNil)
		_, err = sess.Restart(ctx, "c1")
		So(err, ShouldBeNil)

		keyDone := make(chan error, 1)
		go func() {
			_, err := sess.RecordKeystroke(ctx, "c1", 0, "a")
			keyDone <- err
		}()
		<-st.entered

		Convey("Then extra commands are refused and a departure still lands", func() {
			const callers = 6
			results := make(chan error, callers)
			for i := 0; i < callers; i++ {
				go func() {
					_, err := sess.Stats(ctx)
					results <- err
				}()
			}

			// Nothing completes while the worker is stuck, so the first
			// results are refusals.
			busy := 0
			select {
			case err := <-results:
				So(errors.Is(err, service.ErrBackpressure), ShouldBeTrue)
				busy++
			case <-time.After(2 * time.Second):
				t.Fatal("no caller was refused")
			}

			leaveDone := make(chan error, 1)
			go func() { leaveDone <- sess.Leave(ctx, "c1") }()
			time.Sleep(20 * time.Millisecond)
			close(st.release)

			So(<-keyDone, ShouldBeNil)
			for i := 1; i < callers; i++ {
				err := <-results
				if err != nil {
					So(errors.Is(err, service.ErrBackpressure), ShouldBeTrue)
					busy++
				}
			}
			So(busy, ShouldBeGreaterThan, 0)
			So(<-leaveDone, ShouldBeNil)

			stats, err := sess.Stats(ctx)
			So(err, ShouldBeNil)
			So(stats.Participants, ShouldEqual, 0)
			So(stats.Round, ShouldEqual, 0)
		})
	})
}
