// This file is part of sal8 - https://github.com/db47h/sal8
//
// Copyright 2016 Denis Bernard <db047h@gmail.com>
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

package vm

import (
	"bytes"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

// Cluster file format identification.
const (
	ClusterMagic   = "SAL8"
	ClusterVersion = 1
)

// ErrBadClusterFile is returned when decoding data that is not a cluster
// file or has an unsupported version.
var ErrBadClusterFile = errors.New("not a SAL-8 cluster file")

type clusterFile struct {
	Magic   string `cbor:"1,keyasint"`
	Version uint   `cbor:"2,keyasint"`
	Code    []byte `cbor:"3,keyasint"`
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("vm: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalCluster serializes a Cluster to CBOR bytes. The encoding is
// canonical, so that identical clusters always produce identical files.
func MarshalCluster(c *Cluster) ([]byte, error) {
	b, err := cborEncMode.Marshal(&clusterFile{
		Magic:   ClusterMagic,
		Version: ClusterVersion,
		Code:    c.Bytes(),
	})
	return b, errors.Wrap(err, "marshal cluster")
}

// UnmarshalCluster deserializes a Cluster from CBOR bytes.
func UnmarshalCluster(data []byte) (*Cluster, error) {
	var f clusterFile
	if err := cbor.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(ErrBadClusterFile, err.Error())
	}
	if f.Magic != ClusterMagic {
		return nil, errors.Wrapf(ErrBadClusterFile, "bad magic %q", f.Magic)
	}
	if f.Version != ClusterVersion {
		return nil, errors.Wrapf(ErrBadClusterFile, "unsupported version %d", f.Version)
	}
	if len(f.Code) > MaxClusterSize {
		return nil, errors.Wrapf(ErrClusterTooLarge, "%d bytes", len(f.Code))
	}
	return newCluster(f.Code), nil
}

// IsClusterFile returns true if data looks like a serialized cluster. It only
// checks the header, use UnmarshalCluster for a full check.
func IsClusterFile(data []byte) bool {
	var hdr struct {
		Magic string `cbor:"1,keyasint"`
	}
	if len(data) == 0 || !bytes.Contains(data[:min(len(data), 16)], []byte(ClusterMagic)) {
		return false
	}
	return cbor.Unmarshal(data, &hdr) == nil && hdr.Magic == ClusterMagic
}

// LoadCluster loads a cluster from file fileName.
func LoadCluster(fileName string) (*Cluster, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "open failed")
	}
	c, err := UnmarshalCluster(data)
	if err != nil {
		return nil, errors.Wrap(err, fileName)
	}
	return c, nil
}

// Save saves a cluster to file fileName. The file is removed if the write
// fails.
func Save(fileName string, c *Cluster) (err error) {
	data, err := MarshalCluster(c)
	if err != nil {
		return err
	}
	f, err := os.Create(fileName)
	if err != nil {
		return errors.Wrap(err, "create failed")
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = errors.Wrap(cerr, "close failed")
		}
		// delete file on error
		if err != nil {
			os.Remove(fileName)
		}
	}()
	_, err = f.Write(data)
	return errors.Wrap(err, "write failed")
}
