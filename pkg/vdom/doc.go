// Package vdom provides the virtual node tree pages and layouts render into.
//
// Pages never write HTML directly. They build a tree of *VNode values with
// variadic element constructors, and pkg/render turns the finished tree into
// markup:
//
//	Div(Class("card"),
//	    H2(Text(post.Title)),
//	    P(Text(post.Summary)),
//	)
//
// Arguments to an element constructor may be attributes (Attr, []Attr),
// children (*VNode, []*VNode, Component), plain strings (text children) or nil,
// which is ignored so conditional attributes and children compose cleanly.
//
// Layouts receive the already-built tree of their nested content as a Slot
// and place it wherever their chrome needs it.
package vdom
