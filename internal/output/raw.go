package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/temirov/helptree/internal/types"
)

const (
	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "

	labelDescriptionFormat = "%s: %s"
	aliasesFormat          = "%s (%s)"
	usageFormat            = "usage: %s"
	aliasSeparator         = ", "
	globalFlagsLabel       = "Global Flags"
	flagDefaultFormat      = "%s (default %q)"
)

// rawNode is one printed line of the raw tree and the lines nested below it.
type rawNode struct {
	label    string
	children []rawNode
}

// WriteTreeRaw prints tree with box-drawing connectors: groups under the program,
// commands under their group, flags before subcommands.
func WriteTreeRaw(writer io.Writer, tree types.CommandTree) {
	root := rawNode{label: describe(tree.Program, tree.Description)}
	if tree.Usage != "" {
		root.children = append(root.children, rawNode{label: fmt.Sprintf(usageFormat, tree.Usage)})
	}
	for _, group := range tree.Groups {
		groupNode := rawNode{label: group.Name}
		for _, command := range group.Commands {
			groupNode.children = append(groupNode.children, commandNode(command))
		}
		root.children = append(root.children, groupNode)
	}
	if len(tree.GlobalFlags) > 0 {
		root.children = append(root.children, rawNode{label: globalFlagsLabel, children: flagNodes(tree.GlobalFlags)})
	}
	renderRawNode(writer, root, "", true, true)
}

func commandNode(command types.Command) rawNode {
	label := command.Name
	if len(command.Aliases) > 0 {
		label = fmt.Sprintf(aliasesFormat, label, strings.Join(command.Aliases, aliasSeparator))
	}
	node := rawNode{label: describe(label, command.Description)}
	node.children = append(node.children, flagNodes(command.Flags)...)
	for _, subcommand := range command.Subcommands {
		node.children = append(node.children, commandNode(subcommand))
	}
	return node
}

func flagNodes(flags []types.Flag) []rawNode {
	nodes := make([]rawNode, 0, len(flags))
	for _, flag := range flags {
		nameField := types.Flag{Short: flag.Short, Long: flag.Long, ValueType: flag.ValueType}.HelpLine()
		description := flag.Description
		if flag.Default != nil {
			description = strings.TrimSpace(fmt.Sprintf(flagDefaultFormat, description, *flag.Default))
		}
		nodes = append(nodes, rawNode{label: describe(strings.TrimSpace(nameField), description)})
	}
	return nodes
}

func describe(label, description string) string {
	if description == "" {
		return label
	}
	return fmt.Sprintf(labelDescriptionFormat, label, description)
}

func treeNodeLinePrefix(prefix string, isRoot bool, isLast bool) (string, string) {
	if isRoot {
		return "", ""
	}
	connector := treeBranchConnector
	childPrefix := prefix + treeBranchPadding
	if isLast {
		connector = treeLastConnector
		childPrefix = prefix + treeLastPadding
	}
	return prefix + connector, childPrefix
}

func renderRawNode(writer io.Writer, node rawNode, prefix string, isRoot bool, isLast bool) {
	linePrefix, childPrefix := treeNodeLinePrefix(prefix, isRoot, isLast)
	fmt.Fprintf(writer, "%s%s\n", linePrefix, node.label)
	for index, child := range node.children {
		renderRawNode(writer, child, childPrefix, false, index == len(node.children)-1)
	}
}
