package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCreateApp(t *testing.T) {
	tests := map[string]struct {
		cfg         *Config
		expectedErr string
	}{
		"empty": {
			cfg:         &Config{},
			expectedErr: "service name is required\nstop timeout is required",
		},
		"valid": {
			cfg: &Config{ServiceName: "test", StopTimeout: time.Second},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			a, err := CreateApp(tc.cfg)
			if tc.expectedErr != "" {
				require.EqualError(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, a)
		})
	}
}

func newDep(ctrl *gomock.Controller, name string) *MockDependency {
	d := NewMockDependency(ctrl)
	d.EXPECT().Name().Return(name).AnyTimes()
	return d
}

func TestApp_Run(t *testing.T) {
	t.Run("stops in reverse order on cancel", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		first, second := newDep(ctrl, "first"), newDep(ctrl, "second")
		gomock.InOrder(
			first.EXPECT().Start().Return(nil),
			second.EXPECT().Start().Return(nil),
			second.EXPECT().Stop().Return(nil),
			first.EXPECT().Stop().Return(nil),
		)

		a, err := CreateApp(&Config{ServiceName: "test", StopTimeout: time.Second}, first, second)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.NoError(t, a.Run(ctx))
		require.EqualError(t, a.Run(ctx), "run has already been called")
	})

	t.Run("start failure stops started deps", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		first, second, third := newDep(ctrl, "first"), newDep(ctrl, "second"), newDep(ctrl, "third")
		first.EXPECT().Start().Return(nil)
		second.EXPECT().Start().Return(errors.New("port in use"))
		first.EXPECT().Stop().Return(errors.New("flush failed"))

		a, err := CreateApp(&Config{ServiceName: "test", StopTimeout: time.Second}, first, second, third)
		require.NoError(t, err)

		err = a.Run(context.Background())
		require.ErrorContains(t, err, "failure in Start() for dependency second: port in use")
		require.ErrorContains(t, err, "failure in Stop() for dependency first: flush failed")
	})

	t.Run("start panic", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		dep := newDep(ctrl, "bad")
		dep.EXPECT().Start().DoAndReturn(func() error { panic("boom") })

		a, err := CreateApp(&Config{ServiceName: "test", StopTimeout: time.Second}, dep)
		require.NoError(t, err)
		require.EqualError(t, a.Run(context.Background()), "panic in Start() for dependency bad: boom")
	})

	t.Run("stop timeout", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		dep := newDep(ctrl, "slow")
		release := make(chan struct{})
		t.Cleanup(func() { close(release) })
		dep.EXPECT().Start().Return(nil)
		dep.EXPECT().Stop().DoAndReturn(func() error {
			<-release
			return nil
		})

		a, err := CreateApp(&Config{ServiceName: "test", StopTimeout: 20 * time.Millisecond}, dep)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err = a.Run(ctx)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.EqualError(t, a.stop(), "stop has already been called")
	})
}
