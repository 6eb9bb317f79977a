// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package translate

import (
	"fmt"

	"github.com/ajroetker/pancakevc/pancake"
	"github.com/ajroetker/pancakevc/viper"
)

// annotation lowers a specification annotation. Assertions, inhales and
// exhales are emitted in place; invariants and pre/postconditions are
// recorded on the context and leave only a comment behind.
func (c *Context) annotation(a pancake.Annotation) error {
	switch a.Kind {
	case pancake.Fold, pancake.Unfold:
		return c.fold(a)
	case pancake.Invariant:
		if c.loop == nil {
			return &InvalidAnnotationError{Kind: a.Kind, Reason: "invariant outside of a loop"}
		}
	}

	body, err := inMode(c, modeOf(a.Kind), func() (viper.Expr, error) {
		return c.cond(a.Expr)
	})
	if err != nil {
		return err
	}
	switch a.Kind {
	case pancake.Assertion:
		c.emit(viper.Assert{Expr: body})
	case pancake.Inhale:
		c.emit(viper.Inhale{Expr: body})
	case pancake.Exhale:
		c.emit(viper.Exhale{Expr: body})
	case pancake.Invariant:
		c.loop.invariants = append(c.loop.invariants, body)
		c.emit(viper.Comment{Text: "annotation pushed"})
	case pancake.Precondition:
		c.fn.pres = append(c.fn.pres, body)
		c.emit(viper.Comment{Text: "annotation pushed"})
	case pancake.Postcondition:
		c.fn.posts = append(c.fn.posts, body)
		c.emit(viper.Comment{Text: "annotation pushed"})
	default:
		return &InvalidAnnotationError{Kind: a.Kind, Reason: "unknown annotation kind"}
	}
	return nil
}

// fold emits fold or unfold of a predicate application with full permission.
func (c *Context) fold(a pancake.Annotation) error {
	app, ok := a.Expr.(pancake.App)
	if !ok {
		return &InvalidAnnotationError{Kind: a.Kind, Reason: fmt.Sprintf("expected a predicate access, got %s", a.Expr)}
	}
	args, err := inMode(c, ModeAssertion, func() ([]viper.Expr, error) {
		return c.exprs(app.Args)
	})
	if err != nil {
		return err
	}
	access := viper.PredicateAccess{Name: app.Func, Args: args, Perm: viper.FullPerm{}}
	if a.Kind == pancake.Fold {
		c.emit(viper.Fold{Access: access})
	} else {
		c.emit(viper.Unfold{Access: access})
	}
	return nil
}
