package checkout

import (
	"context"
	"sync"
	"sync/atomic"
)

type fakeWidget struct {
	token     string
	submitErr error
	confirm   func(ctx context.Context, p ConfirmParams) (ConfirmResult, error)

	confirms atomic.Int32
	torn     atomic.Bool
}

func (w *fakeWidget) Submit(ctx context.Context) error { return w.submitErr }

func (w *fakeWidget) Confirm(ctx context.Context, p ConfirmParams) (ConfirmResult, error) {
	w.confirms.Add(1)
	if w.confirm == nil {
		return ConfirmResult{}, nil
	}
	return w.confirm(ctx, p)
}

func (w *fakeWidget) Teardown() { w.torn.Store(true) }

// widgetLog is a WidgetFactory that remembers every widget it built.
type widgetLog struct {
	confirm func(ctx context.Context, p ConfirmParams) (ConfirmResult, error)

	mu    sync.Mutex
	built []*fakeWidget
}

func (l *widgetLog) Construct(s Session) (Widget, error) {
	w := &fakeWidget{token: s.Token, confirm: l.confirm}
	l.mu.Lock()
	l.built = append(l.built, w)
	l.mu.Unlock()
	return w, nil
}

func (l *widgetLog) widgets() []*fakeWidget {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*fakeWidget(nil), l.built...)
}

func (l *widgetLog) confirmCalls() int {
	n := 0
	for _, w := range l.widgets() {
		n += int(w.confirms.Load())
	}
	return n
}

type navLog struct {
	mu   sync.Mutex
	urls []string
}

func (n *navLog) Navigate(url string) {
	n.mu.Lock()
	n.urls = append(n.urls, url)
	n.mu.Unlock()
}

func (n *navLog) visited() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.urls...)
}
