package main

import (
	"context"
	"errors"

	"github.com/znx3p0/canary"
)

// registerDemo 注册 echo 与 Math/Add
func registerDemo(r *canary.Route) error {
	if err := r.RegisterService("echo", echo); err != nil {
		return err
	}
	m, err := r.AddRoute("Math")
	if err != nil {
		return err
	}
	return m.RegisterService("Add", add)
}

// echo 原样返回收到的字符串，直到对端关闭
func echo(ctx context.Context, ch *canary.Channel) error {
	for {
		msg, err := canary.Receive[string](ch)
		if errors.Is(err, canary.ErrEndOfStream) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := ch.Send(msg); err != nil {
			return err
		}
	}
}

// add 接收一组整数，回复它们的和
func add(ctx context.Context, ch *canary.Channel) error {
	nums, err := canary.Receive[[]int](ch)
	if err != nil {
		return err
	}
	sum := 0
	for _, n := range nums {
		sum += n
	}
	return ch.Send(sum)
}
