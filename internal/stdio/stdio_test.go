package stdio

import (
	"reflect"
	"testing"
)

func TestPolicy(t *testing.T) {
	tests := []struct {
		name    string
		spec    Spec
		withIPC bool
		want    []Mode
	}{
		{
			name:    "기본값은 inherit",
			spec:    Spec{},
			withIPC: false,
			want:    []Mode{Inherit, Inherit, Inherit},
		},
		{
			name:    "기본값 + IPC",
			spec:    Spec{},
			withIPC: true,
			want:    []Mode{Inherit, Inherit, Inherit, IPC},
		},
		{
			name:    "단일 모드 확장",
			spec:    Spec{Mode: Pipe},
			withIPC: false,
			want:    []Mode{Pipe, Pipe, Pipe},
		},
		{
			name:    "단일 모드 + IPC",
			spec:    Spec{Mode: Inherit},
			withIPC: true,
			want:    []Mode{Inherit, Inherit, Inherit, IPC},
		},
		{
			name:    "명시적 목록은 그대로",
			spec:    Spec{Modes: []Mode{Pipe, Inherit, Ignore}},
			withIPC: false,
			want:    []Mode{Pipe, Inherit, Ignore},
		},
		{
			name:    "명시적 목록에 IPC 슬롯 추가",
			spec:    Spec{Modes: []Mode{Pipe, Inherit, Ignore}},
			withIPC: true,
			want:    []Mode{Pipe, Inherit, Ignore, IPC},
		},
		{
			name:    "IPC 슬롯이 이미 있으면 중복 추가하지 않음",
			spec:    Spec{Modes: []Mode{Pipe, Pipe, Pipe, IPC}},
			withIPC: true,
			want:    []Mode{Pipe, Pipe, Pipe, IPC},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Policy(tt.spec, tt.withIPC)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Policy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPolicy_Idempotent(t *testing.T) {
	spec := Spec{Modes: []Mode{Inherit, Inherit, Inherit, IPC}}
	first := Policy(spec, true)
	second := Policy(spec, true)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Policy() 멱등성 위반: %v != %v", first, second)
	}
}

func TestPolicy_DoesNotMutateInput(t *testing.T) {
	modes := []Mode{Pipe, Pipe, Pipe}
	spec := Spec{Modes: modes}
	_ = Policy(spec, true)
	if len(modes) != 3 {
		t.Errorf("입력 슬라이스가 변경됨: %v", modes)
	}
}

func TestSpec_IsZero(t *testing.T) {
	if !(Spec{}).IsZero() {
		t.Error("빈 Spec의 IsZero() = false, want true")
	}
	if (Spec{Mode: Pipe}).IsZero() {
		t.Error("단일 모드 Spec의 IsZero() = true, want false")
	}
	if (Spec{Modes: []Mode{Inherit}}).IsZero() {
		t.Error("목록 Spec의 IsZero() = true, want false")
	}
}
