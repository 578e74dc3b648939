/*
Package flowbuilder is a headless editor for chatbot conversation flows.

A flow is a directed graph of typed nodes (Welcome, Intent, Handoff, Condition,
Message) connected port to port. The Editor owns the graph, the canvas state
(viewport and the interaction mode of the pointer) and the last rendered scene.
A thin client sends pointer and keyboard commands and draws the scenes it receives;
every semantic rule lives here.

# Concept

All operations on an Editor are serialized. Mutations are saved to a key-value
slot after a short quiet period, and every successful save is forwarded to the
chatbot runtime through a FlowSink. Failures never roll back the in-memory graph:
they surface as notices.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/flowbuilder"
		"github.com/aretw0/flowbuilder/pkg/adapters/file"
		"github.com/aretw0/flowbuilder/pkg/domain"
		"github.com/aretw0/flowbuilder/pkg/interaction"
	)

	func main() {
		store := file.New(".flowbuilder/data")

		ed, err := flowbuilder.New(flowbuilder.WithStore(store))
		if err != nil {
			log.Fatal(err)
		}
		ctx := context.Background()
		defer ed.Close(ctx)

		// 1. Restore the saved flow (or the default one)
		ed.Load(ctx)

		// 2. Edit through the graph API...
		msg, _ := ed.CreateNode(domain.KindMessage, domain.Point{X: 400, Y: 400}, domain.Payload{Title: "Opening hours"})

		// 3. ...or through pointer commands, exactly like the canvas does
		ed.Handle(interaction.PointerDown{Target: interaction.NodeBodyTarget{NodeID: msg.ID}, Screen: domain.Point{X: 410, Y: 410}})
		ed.Handle(interaction.PointerMove{Screen: domain.Point{X: 510, Y: 410}})
		ed.Handle(interaction.PointerUp{Screen: domain.Point{X: 510, Y: 410}})

		log.Printf("%d nodes", len(ed.Scene().Nodes))
	}
*/
package flowbuilder
