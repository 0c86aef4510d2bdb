// Package scene models the node hierarchy that blend-shape animation is
// addressed against. It provides the [Node] handle consumed by path
// resolution, an in-memory [Transform] tree, rig-file loading, and the
// [RelativePath] / [Resolve] pair that converts between a node and its
// slash-separated address below an animation root.
package scene
