package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFakeTickerFiresOnAdvance(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := NewFake(start)
	tk := f.NewTicker(time.Second)

	f.Advance(500 * time.Millisecond)
	select {
	case <-tk.C():
		t.Fatal("ticked early")
	default:
	}

	f.Advance(500 * time.Millisecond)
	select {
	case got := <-tk.C():
		require.Equal(t, start.Add(time.Second), got)
	default:
		t.Fatal("expected tick")
	}
}

func TestFakeTickerDropsUnreadTicks(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	tk := f.NewTicker(time.Second)
	f.Advance(5 * time.Second)
	<-tk.C()
	select {
	case <-tk.C():
		t.Fatal("only one tick should be buffered")
	default:
	}
	// next tick is due at 6s
	f.Advance(time.Second)
	select {
	case <-tk.C():
	default:
		t.Fatal("expected tick at 6s")
	}
}

func TestFakeStopRemovesTicker(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	tk := f.NewTicker(time.Second)
	require.Equal(t, 1, f.Tickers())
	tk.Stop()
	require.Equal(t, 0, f.Tickers())
	f.Advance(3 * time.Second)
	select {
	case <-tk.C():
		t.Fatal("stopped ticker fired")
	default:
	}
}

func TestRealNow(t *testing.T) {
	before := time.Now()
	got := Real{}.Now()
	require.False(t, got.Before(before))
}
